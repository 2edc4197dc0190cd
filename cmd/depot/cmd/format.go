package cmd

import (
	"io"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

// Formatter writes data to the output
type Formatter interface {
	Format(io.Writer, interface{}) error
}

// FormatterFunc turns a function into a formatter
type FormatterFunc func(io.Writer, interface{}) error

// Format the data
func (f FormatterFunc) Format(w io.Writer, data interface{}) error {
	return f(w, data)
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func defaultFormatters() map[string]Formatter {
	return map[string]Formatter{
		"json": FormatterFunc(func(w io.Writer, data interface{}) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(data)
		}),
		"yaml": FormatterFunc(func(w io.Writer, data interface{}) error {
			b, err := yaml.Marshal(data)
			if err != nil {
				return err
			}
			_, err = w.Write(b)
			return err
		}),
	}
}

type formatFlag struct {
	value      string
	formatters map[string]Formatter
}

var formats = make(map[*cobra.Command]*formatFlag)

// addFormatFlag registers the --format flag, extra formatters are added to json and yaml
func addFormatFlag(cmd *cobra.Command, defaultFormat string, extra ...map[string]Formatter) error {
	ff := &formatFlag{formatters: defaultFormatters()}
	for _, fm := range extra {
		for k, v := range fm {
			ff.formatters[k] = v
		}
	}
	if _, ok := ff.formatters[defaultFormat]; !ok {
		return errors.Errorf("no formatter registered for %q", defaultFormat)
	}

	names := make([]string, 0, len(ff.formatters))
	for k := range ff.formatters {
		names = append(names, k)
	}
	sort.Strings(names)

	cmd.Flags().StringVarP(&ff.value, "format", "o", defaultFormat, "The output format: "+strings.Join(names, ", "))
	formats[cmd] = ff
	return nil
}

// print the data with the formatter selected for the command
func print(cmd *cobra.Command, data interface{}) error {
	ff, ok := formats[cmd]
	if !ok {
		return errors.Errorf("%s has no format flag", cmd.Name())
	}
	formatter, ok := ff.formatters[ff.value]
	if !ok {
		return errors.Errorf("unknown format %q", ff.value)
	}
	return formatter.Format(cmd.OutOrStdout(), data)
}

func mustAddFormatFlag(cmd *cobra.Command, defaultFormat string, extra ...map[string]Formatter) {
	if err := addFormatFlag(cmd, defaultFormat, extra...); err != nil {
		wrapFatalln("format flag for "+cmd.Name(), err)
	}
}
