package bootstrap

import "errors"

var (
	errMergeCheck = errors.New("list append produced the wrong length")
	errQueryCheck = errors.New("query upsert produced the wrong URL")
)
