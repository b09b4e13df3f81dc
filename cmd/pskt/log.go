package main

import (
	"github.com/biryukovmaxim/rusty-kaspa/infrastructure/logger"
)

var log = logger.RegisterSubSystem("PSKC")
