package seed

import (
	"context"
	"errors"
	"time"

	orderdomain "github.com/bentoworks/shukin/internal/order/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type demoOrder struct {
	userID      string
	userName    string
	companyName string
	amount      int64
	daysAgo     int
}

var demoOrders = []demoOrder{
	{"U001", "Sato Kenji", "Higashi Trading", 5000, 14},
	{"U001", "Sato Kenji", "Higashi Trading", 4500, 7},
	{"U002", "Tanaka Yui", "Higashi Trading", 3000, 10},
	{"U003", "Yamada Hiroshi", "Nishi Print", 2000, 12},
	{"U004", "Kobayashi Mika", "Nishi Print", 6000, 5},
	{"U005", "Watanabe Aoi", "Minami Foods", 1200, 3},
}

// EnsureDemoOrders seeds a handful of delivered orders so local setups have
// receivables to work with. Orders are only inserted into an empty store.
func EnsureDemoOrders(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&orderdomain.Order{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := time.Now().UTC()
		for _, o := range demoOrders {
			order := orderdomain.Order{
				ID:           node.Generate(),
				UserID:       o.userID,
				UserName:     o.userName,
				CompanyName:  o.companyName,
				Amount:       o.amount,
				DeliveryDate: now.AddDate(0, 0, -o.daysAgo),
				CreatedAt:    now,
			}
			if err := tx.Create(&order).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
