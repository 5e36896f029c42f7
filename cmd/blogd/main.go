package main

import (
	"os"

	"github.com/alecthomas/kong"
)

func main() {
	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("blogd"),
		kong.Description("Serve, import and render MDX blog posts."),
		kong.UsageOnError(),
	)
	err := ctx.Run(&Global{Out: os.Stdout, Lookup: os.LookupEnv}, &cli)
	ctx.FatalIfErrorf(err)
}
