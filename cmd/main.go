package main

import (
	"log"

	"github.com/campusevents/backend/cmd/app"
	"github.com/campusevents/backend/internal/adapters/config"
	"github.com/campusevents/backend/internal/adapters/controller/http/setup"

	_ "time/tzdata"
)

func main() {
	cfg := config.Get()
	a, err := app.New(cfg)
	if err != nil {
		log.Panic(err)
	}

	setup.Setup(a)

	a.Start()
}
