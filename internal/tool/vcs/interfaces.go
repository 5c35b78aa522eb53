package vcs

import (
	"github.com/Cyclone1070/reactagent/internal/tool/service/git"
)

// repository is the git surface the vcs tools use.
type repository interface {
	Status() ([]git.FileStatus, error)
	StageAll() error
	HeadContent(rel string) (string, bool, error)
	Head() (git.HeadInfo, error)
}

type fileReader interface {
	ReadFile(path string) ([]byte, error)
}

type pathResolver interface {
	Abs(path string) (string, error)
	Rel(path string) (string, error)
}
