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
	"errors"
	"fmt"

	"github.com/k3a/html2text"
	"github.com/urfave/cli/v2"

	"github.com/ianlewis/go-mdict"
	"github.com/ianlewis/go-mdict/header"
)

var queryCommand = &cli.Command{
	Name:      "query",
	Usage:     "Query dictionaries",
	ArgsUsage: "WORD",
	Description: "Look up a word in every dictionary in the data directories, " +
		"or in the dictionaries given with --file.",
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "file",
			Usage:   "query the dictionary `FILE` only",
			Aliases: []string{"f"},
		},
		&cli.BoolFlag{
			Name:               "raw",
			Usage:              "print articles as stored instead of as text",
			DisableDefaultText: true,
		},
		&cli.BoolFlag{
			Name:               "case-sensitive",
			Usage:              "match the case of WORD",
			DisableDefaultText: true,
		},
		&cli.IntFlag{
			Name:  "nth",
			Usage: "print the `N`th of several entries with the same key",
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return fmt.Errorf("%w: unexpected number of arguments", ErrFlagParse)
		}
		word := c.Args().First()

		dicts, errs := openDicts(c, c.StringSlice("file"))
		defer closeAll(dicts)

		found := 0
		for _, d := range dicts {
			if d.Kind() != header.MDX {
				continue
			}
			mode := d.Mode()
			if c.Bool("case-sensitive") {
				mode.IgnoreCase = false
			}
			e, err := d.LookupEntry(word, &mdict.LookupOptions{
				Mode: &mode,
				Nth:  c.Int("nth"),
			})
			if errors.Is(err, mdict.ErrNotFound) {
				continue
			}
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", d.Title(), err))
				continue
			}
			found++

			text := e.Text()
			if !c.Bool("raw") {
				text = html2text.HTML2Text(text)
			}
			fmt.Fprintf(c.App.Writer, "%s\n\n%s\n\n", d.Title(), text)
		}

		if err := reportErrs(c, errs); err != nil {
			return err
		}
		if found == 0 {
			return fmt.Errorf("%w: %q", ErrNoResults, word)
		}
		return nil
	},
}
