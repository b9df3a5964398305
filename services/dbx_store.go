package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
	"github.com/shopspring/decimal"

	"eventvote/models"
	"eventvote/status"
)

// DBStore implements Store on top of the embedded PocketBase database.
// Reads and writes of single records go through the record API so hooks
// fire; the inventory and check-in transitions use conditional UPDATEs
// so concurrent requests serialize in the database.
type DBStore struct {
	app core.App
}

func NewDBStore(app core.App) *DBStore {
	return &DBStore{app: app}
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return status.ErrNotFound
	}
	return err
}

func (d *DBStore) GetEvent(_ context.Context, eventID string) (*models.Event, error) {
	record, err := d.app.FindRecordById("events", eventID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return eventFromRecord(record), nil
}

func (d *DBStore) GetNomineeEvent(_ context.Context, nomineeID string) (string, error) {
	var eventID string
	err := d.app.DB().
		NewQuery("SELECT c.event FROM nominees n JOIN categories c ON c.id = n.category WHERE n.id = {:id}").
		Bind(dbx.Params{"id": nomineeID}).
		Row(&eventID)
	if err != nil {
		return "", mapNotFound(err)
	}
	return eventID, nil
}

func (d *DBStore) GetTicketType(_ context.Context, ticketTypeID string) (*models.TicketType, error) {
	record, err := d.app.FindRecordById("ticket_types", ticketTypeID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return ticketTypeFromRecord(record), nil
}

func (d *DBStore) ReserveInventory(_ context.Context, ticketTypeID string, n int) (bool, error) {
	res, err := d.app.DB().
		NewQuery("UPDATE ticket_types SET remaining_quantity = remaining_quantity - {:n} WHERE id = {:id} AND remaining_quantity >= {:n}").
		Bind(dbx.Params{"id": ticketTypeID, "n": n}).
		Execute()
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (d *DBStore) RestoreInventory(_ context.Context, ticketTypeID string, n int) error {
	_, err := d.app.DB().
		NewQuery("UPDATE ticket_types SET remaining_quantity = MIN(total_quantity, remaining_quantity + {:n}) WHERE id = {:id}").
		Bind(dbx.Params{"id": ticketTypeID, "n": n}).
		Execute()
	return err
}

func (d *DBStore) CreateOrder(_ context.Context, order *models.Order) (*models.Order, error) {
	collection, err := d.app.FindCollectionByNameOrId("orders")
	if err != nil {
		return nil, err
	}

	record := core.NewRecord(collection)
	record.Set("event", order.EventID)
	record.Set("voter", order.VoterID)
	record.Set("total_amount", order.TotalAmount.InexactFloat64())
	record.Set("status", order.Status)
	record.Set("transaction_id", order.TransactionID)

	if err := d.app.Save(record); err != nil {
		return nil, err
	}

	order.ID = record.Id
	return order, nil
}

func (d *DBStore) UpdateOrderStatus(_ context.Context, orderID, orderStatus string) error {
	record, err := d.app.FindRecordById("orders", orderID)
	if err != nil {
		return mapNotFound(err)
	}

	record.Set("status", orderStatus)
	return d.app.Save(record)
}

func (d *DBStore) GetOrder(_ context.Context, orderID string) (*models.Order, error) {
	record, err := d.app.FindRecordById("orders", orderID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return orderFromRecord(record), nil
}

func (d *DBStore) CreateTicket(_ context.Context, ticket *models.Ticket) (*models.Ticket, error) {
	collection, err := d.app.FindCollectionByNameOrId("tickets")
	if err != nil {
		return nil, err
	}

	record := core.NewRecord(collection)
	record.Set("order", ticket.OrderID)
	record.Set("ticket_type", ticket.TicketTypeID)
	record.Set("holder_name", ticket.HolderName)
	record.Set("unique_code", ticket.UniqueCode)
	record.Set("status", ticket.Status)

	if err := d.app.Save(record); err != nil {
		return nil, err
	}

	ticket.ID = record.Id
	return ticket, nil
}

func (d *DBStore) GetTicketByCode(_ context.Context, code string) (*models.Ticket, error) {
	record, err := d.app.FindFirstRecordByFilter(
		"tickets",
		"unique_code = {:code}",
		dbx.Params{"code": code},
	)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return ticketFromRecord(record), nil
}

func (d *DBStore) ListTicketsByOrder(_ context.Context, orderID string) ([]models.Ticket, error) {
	records, err := d.app.FindRecordsByFilter(
		"tickets",
		"order = {:order}",
		"created",
		0,
		0,
		dbx.Params{"order": orderID},
	)
	if err != nil {
		return nil, err
	}

	tickets := make([]models.Ticket, 0, len(records))
	for _, record := range records {
		tickets = append(tickets, *ticketFromRecord(record))
	}
	return tickets, nil
}

func (d *DBStore) MarkTicketUsed(_ context.Context, code string, usedAt time.Time) (bool, error) {
	ts, err := types.ParseDateTime(usedAt)
	if err != nil {
		return false, err
	}

	res, err := d.app.DB().
		NewQuery("UPDATE tickets SET status = {:used}, used_at = {:usedAt} WHERE unique_code = {:code} AND status = {:valid}").
		Bind(dbx.Params{
			"used":   models.TicketUsed,
			"usedAt": ts.String(),
			"code":   code,
			"valid":  models.TicketValid,
		}).
		Execute()
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (d *DBStore) CreateVote(_ context.Context, vote *models.Vote) (*models.Vote, error) {
	collection, err := d.app.FindCollectionByNameOrId("votes")
	if err != nil {
		return nil, err
	}

	record := core.NewRecord(collection)
	record.Set("event", vote.EventID)
	record.Set("nominee", vote.NomineeID)
	record.Set("voter", vote.VoterID)
	record.Set("payment_status", vote.PaymentStatus)
	record.Set("amount", vote.Amount.InexactFloat64())
	record.Set("provider_ref", vote.ProviderRef)

	if err := d.app.Save(record); err != nil {
		return nil, err
	}

	vote.ID = record.Id
	vote.Created = record.GetDateTime("created").Time()
	return vote, nil
}

func (d *DBStore) GetVote(_ context.Context, voteID string) (*models.Vote, error) {
	record, err := d.app.FindRecordById("votes", voteID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return voteFromRecord(record), nil
}

func (d *DBStore) MarkVotePaid(_ context.Context, voteID, providerRef string) error {
	record, err := d.app.FindRecordById("votes", voteID)
	if err != nil {
		return mapNotFound(err)
	}

	record.Set("payment_status", models.VotePaid)
	record.Set("provider_ref", providerRef)
	return d.app.Save(record)
}

func (d *DBStore) CountPaidVotes(_ context.Context, nomineeID string) (int64, error) {
	var count int64
	err := d.app.DB().
		NewQuery("SELECT COUNT(*) FROM votes WHERE nominee = {:nominee} AND payment_status = {:paid}").
		Bind(dbx.Params{"nominee": nomineeID, "paid": models.VotePaid}).
		Row(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (d *DBStore) TallyByEvent(_ context.Context, eventID string) ([]models.NomineeTally, error) {
	tallies := []models.NomineeTally{}
	err := d.app.DB().
		NewQuery(`
			SELECT
				c.id AS category_id,
				c.name AS category_name,
				n.id AS nominee_id,
				n.name AS nominee_name,
				COUNT(v.id) AS votes
			FROM nominees n
			JOIN categories c ON c.id = n.category
			LEFT JOIN votes v ON v.nominee = n.id AND v.payment_status = {:paid}
			WHERE c.event = {:event}
			GROUP BY n.id
			ORDER BY c.name, votes DESC, n.name`).
		Bind(dbx.Params{"event": eventID, "paid": models.VotePaid}).
		All(&tallies)
	if err != nil {
		return nil, err
	}
	return tallies, nil
}

func (d *DBStore) FindTransactionByProviderRef(_ context.Context, providerRef string) (*models.Transaction, error) {
	record, err := d.app.FindFirstRecordByFilter(
		"transactions",
		"provider_ref = {:ref}",
		dbx.Params{"ref": providerRef},
	)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return transactionFromRecord(record), nil
}

func (d *DBStore) RecordTransaction(_ context.Context, tran *models.Transaction) (*models.Transaction, error) {
	collection, err := d.app.FindCollectionByNameOrId("transactions")
	if err != nil {
		return nil, err
	}

	record := core.NewRecord(collection)
	record.Set("provider_ref", tran.ProviderRef)
	record.Set("vote", tran.VoteID)
	record.Set("order", tran.OrderID)
	record.Set("event", tran.EventID)
	record.Set("organizer", tran.OrganizerID)
	record.Set("total_amount", tran.TotalAmount.InexactFloat64())
	record.Set("organizer_share", tran.OrganizerShare.InexactFloat64())
	record.Set("platform_share", tran.PlatformShare.InexactFloat64())
	record.Set("currency", tran.Currency)

	if err := d.app.Save(record); err != nil {
		return nil, err
	}

	tran.ID = record.Id
	return tran, nil
}

func eventFromRecord(record *core.Record) *models.Event {
	return &models.Event{
		ID:           record.Id,
		OrganizerID:  record.GetString("organizer"),
		Title:        record.GetString("title"),
		Description:  record.GetString("description"),
		Location:     record.GetString("location"),
		StartAt:      record.GetDateTime("start_at").Time(),
		EndAt:        record.GetDateTime("end_at").Time(),
		BannerURL:    record.GetString("banner_url"),
		PricePerVote: decimal.NewFromFloat(record.GetFloat("price_per_vote")),
		GateCodeHash: record.GetString("gate_code_hash"),
		Active:       record.GetBool("active"),
	}
}

func ticketTypeFromRecord(record *core.Record) *models.TicketType {
	return &models.TicketType{
		ID:                record.Id,
		EventID:           record.GetString("event"),
		Name:              record.GetString("name"),
		Description:       record.GetString("description"),
		Price:             decimal.NewFromFloat(record.GetFloat("price")),
		TotalQuantity:     record.GetInt("total_quantity"),
		RemainingQuantity: record.GetInt("remaining_quantity"),
	}
}

func ticketFromRecord(record *core.Record) *models.Ticket {
	ticket := &models.Ticket{
		ID:           record.Id,
		OrderID:      record.GetString("order"),
		TicketTypeID: record.GetString("ticket_type"),
		HolderName:   record.GetString("holder_name"),
		UniqueCode:   record.GetString("unique_code"),
		Status:       record.GetString("status"),
	}

	if usedAt := record.GetDateTime("used_at"); !usedAt.IsZero() {
		t := usedAt.Time()
		ticket.UsedAt = &t
	}
	return ticket
}

func orderFromRecord(record *core.Record) *models.Order {
	return &models.Order{
		ID:            record.Id,
		EventID:       record.GetString("event"),
		VoterID:       record.GetString("voter"),
		TotalAmount:   decimal.NewFromFloat(record.GetFloat("total_amount")),
		Status:        record.GetString("status"),
		TransactionID: record.GetString("transaction_id"),
	}
}

func voteFromRecord(record *core.Record) *models.Vote {
	return &models.Vote{
		ID:            record.Id,
		EventID:       record.GetString("event"),
		NomineeID:     record.GetString("nominee"),
		VoterID:       record.GetString("voter"),
		PaymentStatus: record.GetString("payment_status"),
		Amount:        decimal.NewFromFloat(record.GetFloat("amount")),
		ProviderRef:   record.GetString("provider_ref"),
		Created:       record.GetDateTime("created").Time(),
	}
}

func transactionFromRecord(record *core.Record) *models.Transaction {
	return &models.Transaction{
		ID:             record.Id,
		ProviderRef:    record.GetString("provider_ref"),
		VoteID:         record.GetString("vote"),
		OrderID:        record.GetString("order"),
		EventID:        record.GetString("event"),
		OrganizerID:    record.GetString("organizer"),
		TotalAmount:    decimal.NewFromFloat(record.GetFloat("total_amount")),
		OrganizerShare: decimal.NewFromFloat(record.GetFloat("organizer_share")),
		PlatformShare:  decimal.NewFromFloat(record.GetFloat("platform_share")),
		Currency:       record.GetString("currency"),
	}
}
