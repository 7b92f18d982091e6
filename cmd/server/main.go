package main

import (
	"log"
	"net/http"

	"github.com/lespetitsreves/lprds/internal/config"
	"github.com/lespetitsreves/lprds/internal/db"
	"github.com/lespetitsreves/lprds/internal/notify"
	"github.com/lespetitsreves/lprds/internal/web"
)

func main() {
	cfg := config.Load()

	if err := db.Init(cfg); err != nil {
		log.Fatalf("db init: %v", err)
	}
	if cfg.AbsenceNotify {
		notify.StartAbsenceLoop(cfg.AbsenceNotifyInterval)
	}

	r := web.Router()

	log.Printf("LPRDS (%s) listening on %s", cfg.Env, cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, r); err != nil {
		log.Fatal(err)
	}
}
