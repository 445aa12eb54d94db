package contact

import (
	"go.uber.org/fx"

	"github.com/craftmart/storefront/internal/notifier"
	repo "github.com/craftmart/storefront/internal/repository/contact"
)

// Module provides the contact service to Fx.
var Module = fx.Options(
	fx.Provide(
		NewService,
		func(r *repo.Repository) Store { return r },
		func(m notifier.Mailer) Notifier { return m },
	),
)
