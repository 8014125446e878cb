package sqlinline

const QSelectSubscription = `--sql 638dfbac-94ea-4d28-9e89-986d6f232812
select tier, status
from subscriptions
where user_id = $1::text
limit 1;
`

const QUpsertSubscription = `--sql 7fc4c571-b548-40c5-a168-1232e8140454
insert into subscriptions (user_id, tier, status, updated_at)
values ($1::text, $2::text, $3::text, now())
on conflict (user_id) do update set
    tier = excluded.tier,
    status = excluded.status,
    updated_at = now()
returning tier, status;
`
