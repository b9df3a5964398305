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

		collection := core.NewBaseCollection("ticket_types")
		collection.Fields.Add(
			&core.RelationField{
				Name:          "event",
				Required:      true,
				MaxSelect:     1,
				CollectionId:  events.Id,
				CascadeDelete: true,
			},
			&core.TextField{
				Name:     "name",
				Required: true,
				Max:      200,
			},
			&core.EditorField{
				Name: "description",
			},
			&core.NumberField{
				Name: "price",
				Min:  types.Pointer(0.0),
			},
			&core.NumberField{
				Name:    "total_quantity",
				Min:     types.Pointer(0.0),
				OnlyInt: true,
			},
			&core.NumberField{
				Name:    "remaining_quantity",
				Min:     types.Pointer(0.0),
				OnlyInt: true,
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

		collection.AddIndex("idx_ticket_types_event", false, "event", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("ticket_types")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
