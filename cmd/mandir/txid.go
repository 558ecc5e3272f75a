package main

import (
	"fmt"

	"mandir/internal/utils"

	"github.com/urfave/cli/v2"
)

var txidCommand = &cli.Command{
	Name:  "txid",
	Usage: "Generate transaction identifiers and NanoIDs for seed files",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "count",
			Aliases: []string{"c"},
			Usage:   "Number of IDs to generate",
			Value:   1,
		},
		&cli.BoolFlag{
			Name:  "nano",
			Usage: "Generate plain NanoIDs instead of transaction ids",
		},
	},
	Action: func(c *cli.Context) error {
		count := c.Int("count")
		for range count {
			if c.Bool("nano") {
				fmt.Println(utils.NanoID())
				continue
			}
			fmt.Println(utils.TransactionID())
		}
		return nil
	},
}
