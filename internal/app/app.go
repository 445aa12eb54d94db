package app

import (
	"go.uber.org/fx"

	"github.com/craftmart/storefront/internal/cache"
	"github.com/craftmart/storefront/internal/config"
	"github.com/craftmart/storefront/internal/database"
	"github.com/craftmart/storefront/internal/logger"
	"github.com/craftmart/storefront/internal/messaging"
	"github.com/craftmart/storefront/internal/notifier"
	"github.com/craftmart/storefront/internal/observability"
	repositorycontact "github.com/craftmart/storefront/internal/repository/contact"
	repositoryorder "github.com/craftmart/storefront/internal/repository/order"
	repositoryreview "github.com/craftmart/storefront/internal/repository/review"
	httpserver "github.com/craftmart/storefront/internal/server/http"
	servicecontact "github.com/craftmart/storefront/internal/service/contact"
	serviceorder "github.com/craftmart/storefront/internal/service/order"
	servicereview "github.com/craftmart/storefront/internal/service/review"
	transporthttp "github.com/craftmart/storefront/internal/transport/http"
	"github.com/craftmart/storefront/internal/uploads"
	"github.com/craftmart/storefront/internal/worker"
	workernotify "github.com/craftmart/storefront/internal/worker/notify"
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	config.Module,
	cache.Module,
	database.Module,
	logger.Module,
	messaging.Module,
	notifier.Module,
	observability.Module,
	uploads.Module,
	repositorycontact.Module,
	repositoryorder.Module,
	repositoryreview.Module,
	servicecontact.Module,
	serviceorder.Module,
	servicereview.Module,
)

// HTTP wires the HTTP transport on top of the core modules.
var HTTP = fx.Options(
	Core,
	httpserver.Module,
	transporthttp.Module,
)

// Worker exposes background worker processing.
var Worker = fx.Options(
	Core,
	worker.Module,
	workernotify.Module,
)

// Module is the default application wiring (HTTP only).
var Module = HTTP
