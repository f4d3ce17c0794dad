// Copyright 2026 Ian Lewis
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

var keysCommand = &cli.Command{
	Name:        "keys",
	Usage:       "List dictionary keys",
	ArgsUsage:   "FILE",
	Description: "Print the keys of a dictionary in stored order.",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "prefix",
			Usage:   "print only keys beginning with `PREFIX`",
			Aliases: []string{"p"},
		},
		&cli.IntFlag{
			Name:    "limit",
			Usage:   "print at most `N` keys",
			Aliases: []string{"n"},
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return fmt.Errorf("%w: unexpected number of arguments", ErrFlagParse)
		}
		dicts, errs := openDicts(c, c.Args().Slice())
		defer closeAll(dicts)
		if err := reportErrs(c, errs); err != nil {
			return err
		}
		d := dicts[0]

		if prefix := c.String("prefix"); prefix != "" {
			keys, err := d.Prefix(prefix, c.Int("limit"))
			if err != nil {
				return err
			}
			for _, k := range keys {
				fmt.Fprintln(c.App.Writer, k)
			}
			return nil
		}

		limit := c.Int("limit")
		n := 0
		return d.Keys(func(key string) bool {
			fmt.Fprintln(c.App.Writer, key)
			n++
			return limit <= 0 || n < limit
		})
	},
}
