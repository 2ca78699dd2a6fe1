package env

import "github.com/thatsimonsguy/energy-accounting/internal/config"

var Cfg *config.Config
