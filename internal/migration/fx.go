package migration

import (
	"github.com/bentoworks/shukin/internal/config"
	orderdomain "github.com/bentoworks/shukin/internal/order/domain"
	paymentdomain "github.com/bentoworks/shukin/internal/payment/domain"
	receiptdomain "github.com/bentoworks/shukin/internal/receipt/domain"
	"github.com/bentoworks/shukin/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite/mysql local setups use gorm's migrator instead of
			// the versioned SQL files.
			if err := conn.AutoMigrate(
				&orderdomain.Order{},
				&paymentdomain.Payment{},
				&paymentdomain.Allocation{},
				&receiptdomain.Receipt{},
				&receiptdomain.Counter{},
			); err != nil {
				return err
			}
		}

		if cfg.SeedDemoData && !cfg.IsProduction() {
			return seed.EnsureDemoOrders(conn)
		}
		return nil
	}),
)
