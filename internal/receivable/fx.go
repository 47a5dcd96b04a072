package receivable

import (
	"github.com/bentoworks/shukin/internal/receivable/repository"
	"github.com/bentoworks/shukin/internal/receivable/service"
	"go.uber.org/fx"
)

var Module = fx.Module("receivable.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
