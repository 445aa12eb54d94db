package http

import (
	"go.uber.org/fx"

	contacttransport "github.com/craftmart/storefront/internal/transport/http/contact"
	ordertransport "github.com/craftmart/storefront/internal/transport/http/order"
	reviewtransport "github.com/craftmart/storefront/internal/transport/http/review"
)

// Module aggregates all HTTP transport handlers.
var Module = fx.Options(
	ordertransport.Module,
	contacttransport.Module,
	reviewtransport.Module,
)
