package flags

import (
	"os"

	cli "gopkg.in/urfave/cli.v1"
)

// NewApp returns the base CLI application shared by the srl tools.
func NewApp() *cli.App {
	app := cli.NewApp()
	app.Name = "srl"
	app.Usage = "Sereal document toolkit"
	app.Version = "0.1.0"
	app.Writer = os.Stdout
	return app
}
