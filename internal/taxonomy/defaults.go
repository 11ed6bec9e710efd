package taxonomy

import (
	"context"

	"github.com/ocaso/ocaso-api/internal/models"
	"github.com/ocaso/ocaso-api/internal/store"
)

// DefaultNode is one entry of the built-in taxonomy.
type DefaultNode struct {
	Name string
	Slug string
	Subs []DefaultNode
}

// Defaults is the built-in marketplace taxonomy, in display order.
var Defaults = []DefaultNode{
	{
		Name: "Auto's", Slug: "autos", Subs: []DefaultNode{
			{Name: "Personenwagens", Slug: "personenwagens"},
			{Name: "Bestelwagens", Slug: "bestelwagens"},
			{Name: "Oldtimers", Slug: "oldtimers"},
			{Name: "Motorfietsen", Slug: "motorfietsen"},
			{Name: "Auto-onderdelen & toebehoren", Slug: "auto-onderdelen"},
		},
	},
	{
		Name: "Fietsen & Brommers", Slug: "fietsen-brommers", Subs: []DefaultNode{
			{Name: "Stadsfietsen", Slug: "stadsfietsen"},
			{Name: "Racefietsen", Slug: "racefietsen"},
			{Name: "MTB", Slug: "mountainbikes"},
			{Name: "Elektrische fietsen", Slug: "e-bikes"},
			{Name: "Brommers & Scooters", Slug: "brommers"},
			{Name: "Onderdelen & Accessoires", Slug: "fiets-onderdelen"},
		},
	},
	{
		Name: "Huis & Inrichting", Slug: "huis-inrichting", Subs: []DefaultNode{
			{Name: "Meubels", Slug: "meubels"},
			{Name: "Verlichting", Slug: "verlichting"},
			{Name: "Decoratie", Slug: "decoratie"},
			{Name: "Wonen & Keuken", Slug: "wonen-keuken"},
			{Name: "Huishoudtoestellen", Slug: "huishoudtoestellen"},
		},
	},
	{
		Name: "Tuin & Terras", Slug: "tuin-terras", Subs: []DefaultNode{
			{Name: "Tuinmeubelen", Slug: "tuinmeubelen"},
			{Name: "Gereedschap", Slug: "tuingereedschap"},
			{Name: "BBQ & Buitenkeuken", Slug: "bbq"},
			{Name: "Zwembad & Wellness", Slug: "zwembad"},
		},
	},
	{
		Name: "Elektronica, TV & Audio", Slug: "elektronica", Subs: []DefaultNode{
			{Name: "Televisies", Slug: "tv"},
			{Name: "Audio & HiFi", Slug: "audio-hifi"},
			{Name: "Koptelefoons", Slug: "headphones"},
			{Name: "Camera's", Slug: "cameras"},
		},
	},
	{
		Name: "Computers & Software", Slug: "computers", Subs: []DefaultNode{
			{Name: "Laptops", Slug: "laptops"},
			{Name: "Desktops", Slug: "desktops"},
			{Name: "Randapparatuur", Slug: "randapparatuur"},
			{Name: "Componenten", Slug: "componenten"},
		},
	},
	{
		Name: "Telefoons & Tablets", Slug: "phones-tablets", Subs: []DefaultNode{
			{Name: "Smartphones", Slug: "smartphones"},
			{Name: "Tablets", Slug: "tablets"},
			{Name: "Accessoires", Slug: "phone-accessoires"},
		},
	},
	{
		Name: "Kleding & Accessoires", Slug: "kleding", Subs: []DefaultNode{
			{Name: "Dames", Slug: "dames"},
			{Name: "Heren", Slug: "heren"},
			{Name: "Schoenen", Slug: "schoenen"},
			{Name: "Tassen & Juwelen", Slug: "tassen-juwelen"},
		},
	},
	{
		Name: "Kinderen & Baby's", Slug: "kinderen-baby", Subs: []DefaultNode{
			{Name: "Kinderkleding", Slug: "kinderkleding"},
			{Name: "Kinderwagens", Slug: "kinderwagens"},
			{Name: "Speelgoed", Slug: "speelgoed"},
		},
	},
	{
		Name: "Sport & Fitness", Slug: "sport-fitness", Subs: []DefaultNode{
			{Name: "Fitnessapparatuur", Slug: "fitnessapparatuur"},
			{Name: "Fietsen", Slug: "fietsen"},
			{Name: "Teamsport", Slug: "teamsport"},
			{Name: "Buiten & Hiking", Slug: "buiten-hiking"},
		},
	},
	{
		Name: "Hobby's & Vrije tijd", Slug: "hobbys", Subs: []DefaultNode{
			{Name: "Modelbouw", Slug: "modelbouw"},
			{Name: "Verzamelen", Slug: "verzamelen"},
			{Name: "Creatief & Handwerk", Slug: "handwerk"},
		},
	},
	{
		Name: "Muziek, Boeken & Films", Slug: "muziek-boeken-films", Subs: []DefaultNode{
			{Name: "Boeken", Slug: "boeken"},
			{Name: "Muziekinstrumenten", Slug: "muziekinstrumenten"},
			{Name: "LP's & CD's", Slug: "lp-cd"},
			{Name: "Films", Slug: "films"},
		},
	},
	{
		Name: "Games & Consoles", Slug: "games", Subs: []DefaultNode{
			{Name: "Consoles", Slug: "consoles"},
			{Name: "Games", Slug: "games"},
			{Name: "Accessoires", Slug: "game-accessoires"},
		},
	},
	{
		Name: "Dieren & Toebehoren", Slug: "dieren", Subs: []DefaultNode{
			{Name: "Honden & Katten", Slug: "honden-katten"},
			{Name: "Vogels & Knaagdieren", Slug: "vogels-knaagdieren"},
			{Name: "Verzorging & Benodigdheden", Slug: "verzorging"},
		},
	},
	{
		Name: "Doe-het-zelf & Bouw", Slug: "bouw", Subs: []DefaultNode{
			{Name: "Bouwmaterialen", Slug: "bouwmaterialen"},
			{Name: "Gereedschap", Slug: "gereedschap"},
			{Name: "Sanitair & Keuken", Slug: "sanitair-keuken"},
		},
	},
	{
		Name: "Caravans, Campers & Boten", Slug: "caravans-boten", Subs: []DefaultNode{
			{Name: "Caravans & Campers", Slug: "caravans-campers"},
			{Name: "Boten & Watersport", Slug: "boten"},
			{Name: "Onderdelen & Accessoires", Slug: "onderdelen-accessoires"},
		},
	},
	{
		Name: "Tickets & Evenementen", Slug: "tickets", Subs: []DefaultNode{
			{Name: "Concerten", Slug: "concerten"},
			{Name: "Pretparken", Slug: "pretparken"},
			{Name: "Sportevenementen", Slug: "sportevenementen"},
		},
	},
	{
		Name: "Diensten & Vakmensen", Slug: "diensten", Subs: []DefaultNode{
			{Name: "Herstellingen", Slug: "herstellingen"},
			{Name: "Verhuis & Transport", Slug: "verhuis-transport"},
			{Name: "Tuinonderhoud", Slug: "tuinonderhoud"},
		},
	},
	{
		Name: "Huizen & Immo", Slug: "immo", Subs: []DefaultNode{
			{Name: "Te koop", Slug: "te-koop"},
			{Name: "Te huur", Slug: "te-huur"},
			{Name: "Vakantieverhuur", Slug: "vakantie"},
		},
	},
	{
		Name: "Gratis af te halen", Slug: "gratis", Subs: []DefaultNode{
			{Name: "Alles gratis", Slug: "alles-gratis"},
		},
	},
}

// SeedDefaults loads Defaults into an empty category store. It returns false
// without writing when any category already exists, so admin edits survive
// restarts.
func (s *Service) SeedDefaults(ctx context.Context) (bool, error) {
	existing, err := s.store.ListCategories(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}

	err = s.store.WithTx(ctx, func(tx *store.Store) error {
		cats := make([]models.CategoryUpsert, len(Defaults))
		slugs := make([]string, len(Defaults))
		for i, d := range Defaults {
			cats[i] = models.CategoryUpsert{Name: d.Name, Slug: d.Slug, SortOrder: i + 1, IsActive: true}
			slugs[i] = d.Slug
		}
		if err := tx.UpsertCategories(ctx, cats); err != nil {
			return err
		}

		ids, err := tx.CategoryIDsBySlug(ctx, slugs)
		if err != nil {
			return err
		}

		var subs []models.SubcategoryUpsert
		for _, d := range Defaults {
			for j, sub := range d.Subs {
				subs = append(subs, models.SubcategoryUpsert{
					CategoryID: ids[d.Slug],
					Name:       sub.Name,
					Slug:       sub.Slug,
					SortOrder:  j + 1,
					IsActive:   true,
				})
			}
		}
		return tx.UpsertSubcategories(ctx, subs)
	})
	if err != nil {
		return false, err
	}

	s.logger.Info("default taxonomy seeded", "categories", len(Defaults))
	s.notifier.CategoryChanged(ctx, 0, 0)
	return true, nil
}
