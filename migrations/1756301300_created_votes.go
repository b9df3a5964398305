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
		nominees, err := app.FindCollectionByNameOrId("nominees")
		if err != nil {
			return err
		}
		users, err := app.FindCollectionByNameOrId("users")
		if err != nil {
			return err
		}

		collection := core.NewBaseCollection("votes")
		collection.Fields.Add(
			&core.RelationField{
				Name:          "event",
				Required:      true,
				MaxSelect:     1,
				CollectionId:  events.Id,
				CascadeDelete: true,
			},
			&core.RelationField{
				Name:         "nominee",
				Required:     true,
				MaxSelect:    1,
				CollectionId: nominees.Id,
			},
			&core.RelationField{
				Name:         "voter",
				MaxSelect:    1,
				CollectionId: users.Id,
			},
			&core.SelectField{
				Name:      "payment_status",
				Required:  true,
				MaxSelect: 1,
				Values:    []string{"PENDING", "PAID"},
			},
			&core.NumberField{
				Name: "amount",
				Min:  types.Pointer(0.0),
			},
			&core.TextField{
				Name: "provider_ref",
			},
			&core.AutodateField{
				Name:     "created",
				OnCreate: true,
			},
			&core.AutodateField{
				Name:     "updated",
				OnCreate: true,
				OnUpdate: true,
			},
		)

		// The tally query counts PAID rows per nominee.
		collection.AddIndex("idx_votes_nominee_status", false, "nominee, payment_status", "")
		collection.AddIndex("idx_votes_event", false, "event", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("votes")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
