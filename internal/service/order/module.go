package order

import (
	"go.uber.org/fx"

	"github.com/craftmart/storefront/internal/notifier"
	repo "github.com/craftmart/storefront/internal/repository/order"
)

// Module provides the order service to Fx, binding the concrete repository
// and mailer to the interfaces the service consumes.
var Module = fx.Options(
	fx.Provide(
		NewService,
		func(r *repo.Repository) Store { return r },
		func(m notifier.Mailer) Notifier { return m },
	),
)
