package order

import (
	"github.com/bentoworks/shukin/internal/order/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("order.store",
	fx.Provide(repository.Provide),
)
