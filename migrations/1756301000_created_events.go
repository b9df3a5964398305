package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

func init() {
	m.Register(func(app core.App) error {
		users, err := app.FindCollectionByNameOrId("users")
		if err != nil {
			return err
		}

		collection := core.NewBaseCollection("events")
		collection.Fields.Add(
			&core.RelationField{
				Name:         "organizer",
				Required:     true,
				MaxSelect:    1,
				CollectionId: users.Id,
			},
			&core.TextField{
				Name:     "title",
				Required: true,
				Max:      200,
			},
			&core.EditorField{
				Name: "description",
			},
			&core.TextField{
				Name: "location",
				Max:  300,
			},
			&core.DateField{
				Name: "start_at",
			},
			&core.DateField{
				Name: "end_at",
			},
			&core.URLField{
				Name: "banner_url",
			},
			&core.FileField{
				Name:      "banner",
				MaxSelect: 1,
				MaxSize:   5242880,
				MimeTypes: []string{"image/jpeg", "image/png", "image/webp"},
			},
			&core.NumberField{
				Name: "price_per_vote",
				Min:  types.Pointer(0.0),
			},
			&core.TextField{
				Name: "gate_code_hash",
			},
			&core.BoolField{
				Name: "active",
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

		collection.AddIndex("idx_events_organizer", false, "organizer", "")
		collection.AddIndex("idx_events_active", false, "active", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("events")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
