package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		categories, err := app.FindCollectionByNameOrId("categories")
		if err != nil {
			return err
		}

		collection := core.NewBaseCollection("nominees")
		collection.Fields.Add(
			&core.RelationField{
				Name:          "category",
				Required:      true,
				MaxSelect:     1,
				CollectionId:  categories.Id,
				CascadeDelete: true,
			},
			&core.TextField{
				Name:     "name",
				Required: true,
				Max:      200,
			},
			&core.FileField{
				Name:      "photo",
				MaxSelect: 1,
				MaxSize:   5242880,
				MimeTypes: []string{"image/jpeg", "image/png", "image/webp"},
			},
			&core.URLField{
				Name: "photo_url",
			},
			&core.EditorField{
				Name: "bio",
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

		collection.AddIndex("idx_nominees_category", false, "category", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("nominees")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
