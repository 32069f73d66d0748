package commit

import (
	"github.com/zhubert/checkin/vcs"
)

// Strategy selects how a request's changes are routed and whether the
// changelists are managed afterwards.
type Strategy interface {
	Name() string

	route(req *Request, router vcs.Router) []group
	managesChangeLists() bool
}

// Normal routes every change to its owning backend.
func Normal() Strategy {
	return normalStrategy{}
}

// Alien routes every change through backend.
func Alien(backend vcs.Backend) Strategy {
	return alienStrategy{backend: backend}
}

type normalStrategy struct{}

func (normalStrategy) Name() string { return "normal" }

func (normalStrategy) route(req *Request, router vcs.Router) []group {
	if req.Backend != nil && len(req.Included) == 0 {
		return []group{{backend: req.Backend}}
	}
	if router == nil {
		router = vcs.Fixed{}
	}
	return partition(req.Included, router)
}

func (normalStrategy) managesChangeLists() bool { return true }

type alienStrategy struct {
	backend vcs.Backend
}

func (alienStrategy) Name() string { return "alien" }

func (s alienStrategy) route(req *Request, _ vcs.Router) []group {
	return partition(req.Included, vcs.Fixed{Backend: s.backend})
}

func (alienStrategy) managesChangeLists() bool { return false }
