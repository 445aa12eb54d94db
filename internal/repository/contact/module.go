package contact

import "go.uber.org/fx"

// Module provides the contact message repository to Fx.
var Module = fx.Provide(NewRepository)
