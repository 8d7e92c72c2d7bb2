package postgres

const (
	teamMemberColumns = `id, name, name_ar, role, bio, bio_ar, rating, inspection_count,
		email, phone, whatsapp, photo_url, languages, sort_order`

	queryListTeamMembers = `select ` + teamMemberColumns + ` from majaz.team_members
		where is_active and ($1 = '' or role = $1)
		order by sort_order, rating desc, name`

	requestColumns = `id, customer_id, customer_email, customer_name, customer_phone, locale, tier, status,
		vehicle_make, vehicle_model, vehicle_year, vin, location, preferred_date, notes,
		amount, currency, stripe_payment_id, stripe_deposit_id, paid_at, refunded_at, created_at, updated_at`

	queryCreateRequest = `insert into majaz.requests
		(id, customer_id, customer_email, customer_name, customer_phone, locale, tier, status,
		 vehicle_make, vehicle_model, vehicle_year, vin, location, preferred_date, notes, amount, currency)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		returning ` + requestColumns

	queryGetRequest = `select ` + requestColumns + ` from majaz.requests where id = $1`

	queryListRequests = `select ` + requestColumns + ` from majaz.requests
		where customer_id = $1
		  and ($2 = '' or status = $2)
		  and ($3 = '' or vehicle_make ilike '%' || $3 || '%'
		               or vehicle_model ilike '%' || $3 || '%'
		               or vin ilike '%' || $3 || '%'
		               or location ilike '%' || $3 || '%')
		order by created_at desc
		limit $4`

	queryRequestStats = `select status, count(*) from majaz.requests where customer_id = $1 group by status`

	queryFindRequestByPaymentIntent = `select ` + requestColumns + ` from majaz.requests
		where stripe_payment_id = $1 or stripe_deposit_id = $1
		limit 1`

	queryAttachPaymentIntent = `update majaz.requests set stripe_payment_id = $2, updated_at = now() where id = $1`

	queryAttachDepositIntent = `update majaz.requests set stripe_deposit_id = $2, updated_at = now() where id = $1`

	queryInsertEvent = `insert into majaz.events (id, request_id, type, description, payload, stripe_event_id)
		values ($1, $2, $3, $4, $5, $6)
		on conflict (stripe_event_id) do nothing
		returning id`

	queryLockRequestStatus = `select status from majaz.requests where id = $1 for update`

	// Stripe reports amount_refunded per charge as a running total, so only the
	// latest figure for each charge counts.
	queryPaymentLedger = `select
		coalesce((select sum((payload->>'amount')::bigint) from majaz.events
			where request_id = $1 and type = 'payment_succeeded'), 0)::bigint,
		coalesce((select sum(refunded) from (
			select max((payload->>'amount_refunded')::bigint) as refunded from majaz.events
			where request_id = $1 and type = 'payment_refunded'
			group by payload->>'charge_id') charges), 0)::bigint`

	queryApplyPaymentUpdate = `update majaz.requests set
		status = $2,
		paid_at = coalesce(paid_at, $3),
		refunded_at = coalesce($4, refunded_at),
		updated_at = now()
		where id = $1`

	queryListEvents = `select id, request_id, type, description, payload, stripe_event_id, created_at
		from majaz.events where request_id = $1 order by created_at, id`
)
