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
	"os"

	"github.com/urfave/cli/v2"
)

var resourceCommand = &cli.Command{
	Name:        "resource",
	Usage:       "Extract a resource",
	ArgsUsage:   "FILE NAME",
	Description: "Write a resource from an .mdd file to stdout or to a file.",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "out",
			Usage:   "write the resource to `PATH`",
			Aliases: []string{"o"},
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 2 {
			return fmt.Errorf("%w: unexpected number of arguments", ErrFlagParse)
		}
		dicts, errs := openDicts(c, c.Args().Slice()[:1])
		defer closeAll(dicts)
		if err := reportErrs(c, errs); err != nil {
			return err
		}

		b, err := dicts[0].Resource(c.Args().Get(1))
		if err != nil {
			return err
		}
		if out := c.String("out"); out != "" {
			if err := os.WriteFile(out, b, 0o600); err != nil {
				return fmt.Errorf("%w: writing %q: %w", ErrMdutil, out, err)
			}
			return nil
		}
		_, err = c.App.Writer.Write(b)
		return err
	},
}
