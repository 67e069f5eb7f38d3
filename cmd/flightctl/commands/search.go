package commands

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

type searchFlags struct {
	from        string
	to          string
	start       string
	end         string
	maxStops    int
	airline     string
	sortBy      string
	page        int
	pageSize    int
	roundTrip   bool
	returnStart string
	returnEnd   string
}

// SearchCmd searches for itineraries through the API.
func SearchCmd() *cobra.Command {
	var flags searchFlags

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search for flight itineraries",
		Example: `  flightctl search --from JFK --to LAX --start 2025-04-01T00:00:00Z --end 2025-04-01T23:59:59Z --max-stops 2
  flightctl search --from BOS --to SFO --round-trip --return-start 2025-04-08T00:00:00Z --return-end 2025-04-08T23:59:59Z`,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, _ := cmd.Flags().GetString("api")

			params := url.Values{}
			params.Set("departureAirport", flags.from)
			params.Set("arriveAirport", flags.to)
			params.Set("maxStops", strconv.Itoa(flags.maxStops))
			if flags.start != "" {
				params.Set("startTime", flags.start)
			}
			if flags.end != "" {
				params.Set("endTime", flags.end)
			}
			if flags.airline != "" {
				params.Set("airline", flags.airline)
			}
			if flags.sortBy != "" {
				params.Set("sortBy", flags.sortBy)
			}
			if flags.page > 0 {
				params.Set("page", strconv.Itoa(flags.page))
			}
			if flags.pageSize > 0 {
				params.Set("pageSize", strconv.Itoa(flags.pageSize))
			}
			if flags.roundTrip {
				params.Set("oneWay", "false")
				if flags.returnStart != "" {
					params.Set("returnDateStart", flags.returnStart)
				}
				if flags.returnEnd != "" {
					params.Set("returnDateEnd", flags.returnEnd)
				}
			}

			resp, err := http.Get(fmt.Sprintf("%s/api/flights?%s", base, params.Encode()))
			if err != nil {
				return fmt.Errorf("search request: %w", err)
			}
			defer resp.Body.Close()
			return printResponse(resp)
		},
	}

	cmd.Flags().StringVar(&flags.from, "from", "", "Origin airport code or text")
	cmd.Flags().StringVar(&flags.to, "to", "", "Destination airport code or text")
	cmd.Flags().StringVar(&flags.start, "start", "", "Departure window start (RFC 3339)")
	cmd.Flags().StringVar(&flags.end, "end", "", "Departure window end (RFC 3339)")
	cmd.Flags().IntVar(&flags.maxStops, "max-stops", 0, "Maximum intermediate stops")
	cmd.Flags().StringVar(&flags.airline, "airline", "", "Airline preference: delta, southwest, any")
	cmd.Flags().StringVar(&flags.sortBy, "sort", "", "Sort key: departure-time, arrival-time, travel-time")
	cmd.Flags().IntVar(&flags.page, "page", 0, "Result page (1-based)")
	cmd.Flags().IntVar(&flags.pageSize, "page-size", 0, "Results per page")
	cmd.Flags().BoolVar(&flags.roundTrip, "round-trip", false, "Search outbound and return itineraries")
	cmd.Flags().StringVar(&flags.returnStart, "return-start", "", "Return window start (RFC 3339)")
	cmd.Flags().StringVar(&flags.returnEnd, "return-end", "", "Return window end (RFC 3339)")

	return cmd
}
