package server

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/pescuma/relnotes/lib/consoles"
	"github.com/pescuma/relnotes/lib/storages"
)

const DefaultPort = 2428

type Options struct {
	Port uint
}

func Run(console consoles.Console, storage storages.Storage, opts *Options) error {
	s := newServer(storage, opts)

	console.Printf("Loading existing data...\n")

	commits, err := storage.LoadCommits()
	if err != nil {
		return err
	}

	console.Printf("Starting server on port %v with %v commits...\n", s.opts.Port, len(commits))

	gin.SetMode(gin.ReleaseMode)
	return s.router().Run(fmt.Sprintf(":%v", s.opts.Port))
}

type server struct {
	opts    *Options
	storage storages.Storage
}

func newServer(storage storages.Storage, opts *Options) *server {
	if opts == nil {
		opts = &Options{}
	}
	if opts.Port == 0 {
		opts.Port = DefaultPort
	}

	return &server{
		opts:    opts,
		storage: storage,
	}
}

func (s *server) router() *gin.Engine {
	r := gin.Default()

	s.initCommits(r)

	return r
}
