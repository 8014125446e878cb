package sqlinline

const QCreateSchema = `--sql c73fae7a-2eb2-4209-a556-4222d9173500
create extension if not exists pgcrypto;

create table if not exists subscriptions (
    user_id    text primary key,
    tier       text not null default 'free',
    status     text not null default 'inactive',
    updated_at timestamptz not null default now()
);

create table if not exists feature_usage (
    user_id    text not null,
    feature    text not null,
    used       integer not null default 0 check (used >= 0),
    updated_at timestamptz not null default now(),
    primary key (user_id, feature)
);

create table if not exists usage_events (
    id         uuid primary key,
    user_id    text not null,
    request_id text,
    event_type text not null,
    success    boolean not null,
    latency_ms integer not null default 0,
    created_at timestamptz not null default now(),
    properties jsonb not null default '{}'::jsonb
);

create index if not exists usage_events_user_created_idx on usage_events (user_id, created_at desc);
`
