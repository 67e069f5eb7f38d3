package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// GetCmd fetches a single flight leg by id.
func GetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Fetch a flight leg by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, _ := cmd.Flags().GetString("api")
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("flight id must be an integer: %q", args[0])
			}

			resp, err := http.Get(fmt.Sprintf("%s/api/flights/%d", base, id))
			if err != nil {
				return fmt.Errorf("get request: %w", err)
			}
			defer resp.Body.Close()
			return printResponse(resp)
		},
	}
}

// ReserveCmd reserves one seat on a flight leg.
func ReserveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reserve <id>",
		Short: "Reserve one seat on a flight leg",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, _ := cmd.Flags().GetString("api")
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("flight id must be an integer: %q", args[0])
			}

			resp, err := http.Post(fmt.Sprintf("%s/api/flights/%d/reserve", base, id), "application/json", nil)
			if err != nil {
				return fmt.Errorf("reserve request: %w", err)
			}
			defer resp.Body.Close()
			return printResponse(resp)
		},
	}
}

// printResponse re-indents the API's JSON body onto stdout. Non-2xx
// statuses become an error after the body is printed, so callers still
// see the API's error payload.
func printResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var pretty any
	if err := json.Unmarshal(body, &pretty); err == nil {
		if data, err := json.MarshalIndent(pretty, "", "  "); err == nil {
			body = append(data, '\n')
		}
	}
	os.Stdout.Write(body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("API returned %s", resp.Status)
	}
	return nil
}
