package review

import (
	"go.uber.org/fx"

	repo "github.com/craftmart/storefront/internal/repository/review"
)

// Module provides the review service to Fx.
var Module = fx.Options(
	fx.Provide(
		NewService,
		func(r *repo.Repository) Store { return r },
	),
)
