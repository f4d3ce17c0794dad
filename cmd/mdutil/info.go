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

	"github.com/rodaine/table"
	"github.com/urfave/cli/v2"
)

var infoCommand = &cli.Command{
	Name:        "info",
	Usage:       "Show dictionary metadata",
	ArgsUsage:   "FILE",
	Description: "Print the header attributes and layout of a dictionary.",
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

		flags := d.Flags()
		tbl := table.New("Name", "Value").WithWriter(c.App.Writer)
		tbl.AddRow("Title", d.Title())
		tbl.AddRow("Kind", flags.Kind)
		tbl.AddRow("Version", flags.Version)
		tbl.AddRow("Encoding", d.Header().Text().Name())
		tbl.AddRow("Encryption", flags.Encryption)
		tbl.AddRow("Entries", d.EntryCount())
		tbl.AddRow("Key order", d.IndexMode())
		for _, name := range d.Header().Names() {
			tbl.AddRow(name, d.Header().Value(name))
		}
		tbl.Print()
		return nil
	},
}
