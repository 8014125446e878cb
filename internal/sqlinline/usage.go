package sqlinline

const QSelectFeatureUsage = `--sql e2cd734b-56f5-4fcb-8839-8ab304e30797
select feature, used
from feature_usage
where user_id = $1::text;
`

// QIncrementFeatureUsage bumps one counter and records a usage event in a single statement.
const QIncrementFeatureUsage = `--sql 09f47046-c7c8-4ec1-a82e-cc458d600abf
with bumped as (
    insert into feature_usage (user_id, feature, used, updated_at)
    values ($1::text, $2::text, 1, now())
    on conflict (user_id, feature) do update set
        used = feature_usage.used + 1,
        updated_at = now()
    returning used
),
logged as (
    insert into usage_events (id, user_id, request_id, event_type, success, latency_ms, created_at, properties)
    select gen_random_uuid(), $1::text, nullif($3::text, ''), 'FEATURE_USE', true, 0, now(),
           jsonb_build_object('feature', $2::text, 'used', bumped.used)
    from bumped
    returning id
)
select used from bumped;
`

const QResetFeatureUsage = `--sql 8124e87e-5771-486f-afed-7d0d4587b048
update feature_usage
set used = 0,
    updated_at = now()
where user_id = $1::text
  and ($2::text is null or feature = $2::text);
`

const QInsertUsageEvent = `--sql bb8e94be-8ac1-4dff-95da-5d7b103062d7
insert into usage_events(id, user_id, request_id, event_type, success, latency_ms, created_at, properties)
values (gen_random_uuid(), $1::text, nullif($2::text, ''), $3::text, $4::boolean, $5::int, now(), coalesce($6::jsonb, '{}'::jsonb));
`
