package pskt

import (
	"github.com/biryukovmaxim/rusty-kaspa/infrastructure/logger"
)

var log = logger.RegisterSubSystem("PSKT")
