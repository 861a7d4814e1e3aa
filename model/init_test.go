package model_test

import (
	"github.com/cozy/mixmaster-go/test/builder"
)

var (
	doc      = builder.Doc
	node     = builder.Node
	fragment = builder.Fragment
	body     = builder.Body
)
