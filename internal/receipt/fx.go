package receipt

import (
	"github.com/bentoworks/shukin/internal/receipt/repository"
	receiptservice "github.com/bentoworks/shukin/internal/receipt/service"
	"go.uber.org/fx"
)

var Module = fx.Module("receipt.service",
	fx.Provide(repository.Provide),
	fx.Provide(receiptservice.NewService),
)
