package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spachava753/contactbridge/bridge"
	"github.com/spachava753/contactbridge/contactkey"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List contacts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		callArgs := map[string]any{}
		query, _ := cmd.Flags().GetString("query")
		sortBy, _ := cmd.Flags().GetString("sort")
		order, _ := cmd.Flags().GetString("order")
		callArgs["query"] = query
		callArgs["sortBy"] = sortBy
		callArgs["sortOrder"] = order
		if cmd.Flags().Changed("limit") {
			limit, _ := cmd.Flags().GetInt("limit")
			callArgs["limit"] = limit
		}
		offset, _ := cmd.Flags().GetInt("offset")
		callArgs["offset"] = offset
		copyBoolFlag(cmd, "avatars", callArgs, "withAvatars")
		copyBoolFlag(cmd, "high-res", callArgs, "highRes")
		return runCall(cmd, true, bridge.MethodGetContacts, callArgs)
	},
}

var getCmd = &cobra.Command{
	Use:   "get <identifier>",
	Short: "Show one contact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		callArgs := identifierArgs(args[0])
		copyBoolFlag(cmd, "avatars", callArgs, "withAvatars")
		return runCall(cmd, true, bridge.MethodGetContact, callArgs)
	},
}

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Count contacts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		query, _ := cmd.Flags().GetString("query")
		return runCall(cmd, true, bridge.MethodGetTotalContacts, map[string]any{"query": query})
	},
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a contact",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		contact := map[string]any{}
		for flag, key := range map[string]string{
			"display": "displayName",
			"given":   "givenName",
			"middle":  "middleName",
			"family":  "familyName",
			"prefix":  "prefix",
			"suffix":  "suffix",
		} {
			if v, _ := cmd.Flags().GetString(flag); v != "" {
				contact[key] = v
			}
		}

		phones, _ := cmd.Flags().GetStringArray("phone")
		emails, _ := cmd.Flags().GetStringArray("email")
		dates, _ := cmd.Flags().GetStringArray("date")
		var err error
		if contact["phones"], err = labeledValues(phones, "value"); err != nil {
			return err
		}
		if contact["emails"], err = labeledValues(emails, "value"); err != nil {
			return err
		}
		if contact["dates"], err = labeledValues(dates, "date"); err != nil {
			return err
		}

		if photoPath, _ := cmd.Flags().GetString("photo"); photoPath != "" {
			photo, err := os.ReadFile(photoPath)
			if err != nil {
				return fmt.Errorf("reading photo failed: %w", err)
			}
			contact["avatar"] = photo
		}
		return runCall(cmd, false, bridge.MethodSaveContact, map[string]any{"contact": contact})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <identifier>",
	Short: "Delete a contact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCall(cmd, false, bridge.MethodDeleteContact, identifierArgs(args[0]))
	},
}

var avatarCmd = &cobra.Command{
	Use:   "avatar <identifier>",
	Short: "Read or store a contact photo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		setPath, _ := cmd.Flags().GetString("set")
		if setPath != "" {
			return setDisplayPhoto(cmd, args[0], setPath)
		}

		b, s, err := openBridge(true)
		if err != nil {
			return err
		}
		defer s.Close()

		callArgs := identifierArgs(args[0])
		copyBoolFlag(cmd, "high-res", callArgs, "highRes")
		result, err := b.Handle(cmd.Context(), bridge.Call{Method: bridge.MethodGetContactImage, Args: callArgs})
		if err != nil {
			return err
		}
		photo, _ := result.([]byte)
		if len(photo) == 0 {
			return fmt.Errorf("contact %s has no photo", args[0])
		}

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			_, err = cmd.OutOrStdout().Write(photo)
			return err
		}
		if err := os.WriteFile(out, photo, 0o644); err != nil {
			return fmt.Errorf("writing photo failed: %w", err)
		}
		logger.Info("photo written", zap.String("path", out), zap.Int("bytes", len(photo)))
		return nil
	},
}

var dateCmd = &cobra.Command{
	Use:   "date <value>",
	Short: "Parse a partial date such as 2020-06-15, 06/15, or 1999",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b := bridge.New(nil, bridge.Options{Logger: logger})
		result, err := b.Handle(cmd.Context(), bridge.Call{Method: bridge.MethodParseDate, Args: map[string]any{"value": args[0]}})
		if err != nil {
			return err
		}
		return printJSON(cmd, result)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Answer JSON method calls read from stdin",
	Long: `serve reads one JSON request per line from stdin, such as

  {"id": "1", "method": "getContacts", "args": {"limit": 10}}

and writes one JSON response per request to stdout.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, s, err := openBridge(false)
		if err != nil {
			return err
		}
		defer s.Close()
		logger.Info("serving method calls", zap.String("db", cfg.Store.Path), zap.String("mode", string(cfg.Mode())))
		return b.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func runCall(cmd *cobra.Command, readOnly bool, method string, callArgs map[string]any) error {
	b, s, err := openBridge(readOnly)
	if err != nil {
		return err
	}
	defer s.Close()

	result, err := b.Handle(cmd.Context(), bridge.Call{Method: method, Args: callArgs})
	if err != nil {
		return err
	}
	return printJSON(cmd, result)
}

func setDisplayPhoto(cmd *cobra.Command, identifier string, path string) error {
	photo, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading photo failed: %w", err)
	}
	_, s, err := openBridge(false)
	if err != nil {
		return err
	}
	defer s.Close()

	keys, err := contactkey.Of(cfg.Mode(), identifierArgs(identifier))
	if err != nil {
		return err
	}
	if err := s.SetDisplayPhoto(cmd.Context(), keys, photo); err != nil {
		return err
	}
	logger.Info("display photo stored", zap.String("keys", keys.String()), zap.Int("bytes", len(photo)))
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// identifierArgs addresses a contact by numeric id or, failing that, by
// lookup key.
func identifierArgs(identifier string) map[string]any {
	identifier = strings.TrimSpace(identifier)
	if _, err := strconv.ParseInt(identifier, 10, 64); err == nil {
		return map[string]any{"identifier": identifier}
	}
	return map[string]any{"lookupKey": identifier}
}

func copyBoolFlag(cmd *cobra.Command, flag string, callArgs map[string]any, key string) {
	if cmd.Flags().Changed(flag) {
		v, _ := cmd.Flags().GetBool(flag)
		callArgs[key] = v
	}
}

// labeledValues turns label=value flags into transfer items. A value without
// a label gets the default label.
func labeledValues(values []string, valueKey string) ([]any, error) {
	out := make([]any, 0, len(values))
	for _, raw := range values {
		lbl, value, found := strings.Cut(raw, "=")
		if !found {
			lbl, value = "", lbl
		}
		if strings.TrimSpace(value) == "" {
			return nil, fmt.Errorf("empty value in %q", raw)
		}
		out = append(out, map[string]any{"label": strings.TrimSpace(lbl), valueKey: strings.TrimSpace(value)})
	}
	return out, nil
}
