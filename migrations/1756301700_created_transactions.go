package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

func init() {
	m.Register(func(app core.App) error {
		events, err := app.FindCollectionByNameOrId("events")
		if err != nil {
			return err
		}
		users, err := app.FindCollectionByNameOrId("users")
		if err != nil {
			return err
		}
		votes, err := app.FindCollectionByNameOrId("votes")
		if err != nil {
			return err
		}
		orders, err := app.FindCollectionByNameOrId("orders")
		if err != nil {
			return err
		}

		collection := core.NewBaseCollection("transactions")
		collection.Fields.Add(
			&core.TextField{
				Name:     "provider_ref",
				Required: true,
			},
			&core.RelationField{
				Name:         "vote",
				MaxSelect:    1,
				CollectionId: votes.Id,
			},
			&core.RelationField{
				Name:         "order",
				MaxSelect:    1,
				CollectionId: orders.Id,
			},
			&core.RelationField{
				Name:         "event",
				MaxSelect:    1,
				CollectionId: events.Id,
			},
			&core.RelationField{
				Name:         "organizer",
				MaxSelect:    1,
				CollectionId: users.Id,
			},
			&core.NumberField{
				Name: "total_amount",
				Min:  types.Pointer(0.0),
			},
			&core.NumberField{
				Name: "organizer_share",
				Min:  types.Pointer(0.0),
			},
			&core.NumberField{
				Name: "platform_share",
				Min:  types.Pointer(0.0),
			},
			&core.TextField{
				Name: "currency",
				Max:  10,
			},
			&core.AutodateField{
				Name:     "created",
				OnCreate: true,
			},
		)

		// One settlement per provider transaction; webhook replays hit
		// this index.
		collection.AddIndex("idx_transactions_provider_ref", true, "provider_ref", "")
		collection.AddIndex("idx_transactions_event", false, "event", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("transactions")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
