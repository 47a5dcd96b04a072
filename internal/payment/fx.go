package payment

import (
	"github.com/bentoworks/shukin/internal/payment/repository"
	paymentservice "github.com/bentoworks/shukin/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(paymentservice.NewService),
)
