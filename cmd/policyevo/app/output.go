package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/policyevo/policyevo/cmd/policyevo/app/options"
	"github.com/policyevo/policyevo/pkg/runner"
)

func writeResponse(path, format string, resp *runner.Response) error {
	var out io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	return encodeResponse(out, format, resp)
}

func encodeResponse(w io.Writer, format string, resp *runner.Response) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case options.FormatYAML:
		data, err = yaml.Marshal(resp)
	default:
		data, err = json.MarshalIndent(resp, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	_, err = w.Write(data)
	return err
}
