package providers

import (
	"github.com/oxhq/stylefx/providers/catalog"
	"github.com/oxhq/stylefx/providers/golang"
	"github.com/oxhq/stylefx/providers/javascript"
	"github.com/oxhq/stylefx/providers/php"
	"github.com/oxhq/stylefx/providers/python"
	"github.com/oxhq/stylefx/providers/typescript"
)

// DefaultCatalog builds a catalog with every built-in language.
func DefaultCatalog() *catalog.Catalog {
	c := catalog.New()
	for _, t := range []catalog.Tokenizer{
		golang.New(),
		php.New(),
		python.New(),
		javascript.New(),
		typescript.New(),
	} {
		if err := c.Register(t); err != nil {
			// Built-in languages never collide; a collision is a programming error.
			panic(err)
		}
	}
	return c
}
