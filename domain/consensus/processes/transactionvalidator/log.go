package transactionvalidator

import (
	"github.com/biryukovmaxim/rusty-kaspa/infrastructure/logger"
)

var log = logger.RegisterSubSystem("SCRV")
