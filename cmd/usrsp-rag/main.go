// Package main is the entry point for usrsp-rag.
package main

import (
	_ "go.uber.org/automaxprocs"

	"github.com/kart-io/usrsp-rag/internal/query"
)

func main() {
	query.NewApp().Run()
}
