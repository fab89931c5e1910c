package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"netbox-reconciler/core/netbox"
	"netbox-reconciler/core/reconcile"
	"netbox-reconciler/feature/inventory"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	dataFile      string
	setValues     []string
	desiredState  string
	checkMode     bool
	outputFormat  string
	netboxURL     string
	netboxToken   string
	validateCerts bool
)

// reconcileCmd reconciles a single object of the given kind.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile <kind>",
	Short: "Reconcile one NetBox object with a desired state",
	Long: `Reconcile one NetBox object with a desired state.

The desired state is read from a YAML or JSON file (--data-file, "-" for stdin)
and/or from --set field=value pairs. Values given with --set are parsed as YAML
scalars, so numbers and booleans keep their type, except for string fields
(--set name=2019 stays "2019"). Fields set to null are left untouched on the
remote object.

Exit status is 0 on success, 1 when the reconciliation failed and 2 for
invalid command lines or configuration.

Examples:
  # Create or update a platform
  reconcile platform --set name="Test Platform" --set manufacturer="Test Manufacturer"

  # Preview the change without applying it
  reconcile platform -f platform.yaml --check

  # Delete a platform
  reconcile platform --set name="Test Platform" --state absent`,
	Args: cobra.ExactArgs(1),
	RunE: runReconcile,
}

func init() {
	f := reconcileCmd.Flags()
	f.StringVarP(&dataFile, "data-file", "f", "", "YAML or JSON file with the desired state (\"-\" for stdin)")
	f.StringArrayVar(&setValues, "set", nil, "Desired field as field=value (repeatable)")
	f.StringVar(&desiredState, "state", "present", "Desired state: present or absent")
	f.BoolVar(&checkMode, "check", false, "Check mode: report the change without applying it")
	f.BoolVar(&checkMode, "dry-run", false, "Alias for --check")
	f.StringVarP(&outputFormat, "output", "o", "text", "Output format: text or json")
	f.StringVar(&netboxURL, "url", "", "NetBox URL (overrides NETBOX_URL)")
	f.StringVar(&netboxToken, "token", "", "NetBox API token (overrides NETBOX_TOKEN)")
	f.BoolVar(&validateCerts, "validate-certs", true, "Verify the NetBox TLS certificate (overrides NETBOX_VALIDATE_CERTS)")

	RootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	if outputFormat != "text" && outputFormat != "json" {
		return &ExitError{Code: ExitCommand, Err: fmt.Errorf("unsupported output format %q", outputFormat)}
	}

	// unknown kinds are reported by the engine
	var fields map[string]reconcile.FieldType
	if registry, err := inventory.NewRegistry(); err == nil {
		if kind, ok := registry.Get(args[0]); ok {
			fields = kind.Fields
		}
	}

	data, err := readDesiredState(cmd.InOrStdin(), dataFile, setValues, fields)
	if err != nil {
		return &ExitError{Code: ExitCommand, Err: err}
	}

	cfg, err := loadConfig()
	if err != nil {
		return &ExitError{Code: ExitCommand, Err: err}
	}
	if netboxURL != "" {
		cfg.NetBox.URL = netboxURL
	}
	if netboxToken != "" {
		cfg.NetBox.Token = netbox.Secret(netboxToken)
	}
	if cmd.Flags().Changed("validate-certs") {
		cfg.NetBox.ValidateCerts = validateCerts
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return &ExitError{Code: ExitCommand, Err: err}
	}
	defer a.logger.Sync()

	resp := a.service.Reconcile(ctx, reconcile.Request{
		Kind:   args[0],
		Data:   data,
		State:  desiredState,
		DryRun: checkMode,
	}, inventory.SourceCLI)

	if err := writeResponse(cmd.OutOrStdout(), outputFormat, resp); err != nil {
		return &ExitError{Code: ExitCommand, Err: err}
	}

	if resp.Failed() {
		return &ExitError{Code: ExitFailed}
	}
	return nil
}

// readDesiredState merges the data file (if any) with --set pairs; --set wins.
// A --set value for a string field stays a string even when it reads as a
// YAML number or boolean.
func readDesiredState(stdin io.Reader, file string, pairs []string, fields map[string]reconcile.FieldType) (map[string]any, error) {
	data := map[string]any{}

	if file != "" {
		var raw []byte
		var err error
		if file == "-" {
			raw, err = io.ReadAll(stdin)
		} else {
			raw, err = os.ReadFile(file)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read data file: %w", err)
		}
		// YAML is a superset of JSON, one decoder serves both
		if err := yaml.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("failed to parse data file %s: %w", file, err)
		}
		if data == nil {
			data = map[string]any{}
		}
	}

	for _, pair := range pairs {
		field, value, ok := strings.Cut(pair, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid --set %q, expected field=value", pair)
		}
		var parsed any = value
		if value != "" {
			if err := yaml.Unmarshal([]byte(value), &parsed); err != nil {
				parsed = value
			}
			if _, isString := parsed.(string); !isString && parsed != nil && fields[field] == reconcile.FieldString {
				parsed = value
			}
		}
		data[field] = parsed
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("no desired state given, use --data-file or --set")
	}
	return data, nil
}

func writeResponse(w io.Writer, format string, resp inventory.Response) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	if err := reconcile.WriteText(w, resp.Result); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "  run: %s\n", resp.RunID)
	return err
}
