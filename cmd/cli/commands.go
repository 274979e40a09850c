package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/iho/assetledger/internal/adapter/http/dto"
)

// errInconsistent makes the process exit non-zero without printing a usage error.
var errInconsistent = errors.New("ledger is inconsistent")

func depreciationCmd(opts *clientOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "depreciation",
		Short: "Depreciation operations",
	}

	var req dto.PostDepreciationRequest
	postCmd := &cobra.Command{
		Use:   "post",
		Short: "Post monthly depreciation for a period",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result dto.BatchResultResponse
			status, err := newAPIClient(opts).do(cmd.Context(), http.MethodPost, "/api/v1/depreciation/batches", &req, &result, http.StatusServiceUnavailable)
			if err != nil {
				return err
			}

			if opts.jsonOutput {
				if err := printJSON(cmd.OutOrStdout(), result); err != nil {
					return err
				}
			} else {
				printBatch(cmd.OutOrStdout(), &result)
			}

			if status == http.StatusServiceUnavailable {
				return fmt.Errorf("batch interrupted: %s", result.Error)
			}
			if len(result.Failed) > 0 {
				return fmt.Errorf("%d assets failed", len(result.Failed))
			}
			return nil
		},
	}
	postCmd.Flags().StringVar(&req.OrganisationID, "org", "", "Organisation ID (defaults to the token's organisation)")
	postCmd.Flags().StringVar(&req.BranchID, "branch", "", "Restrict to a branch")
	postCmd.Flags().StringVar(&req.Period, "period", "", "Period as YYYY-MM")
	postCmd.Flags().StringSliceVar(&req.AssetIDs, "asset", nil, "Restrict to asset IDs (repeatable)")
	_ = postCmd.MarkFlagRequired("period")

	var org, branch, period string
	postingsCmd := &cobra.Command{
		Use:   "postings",
		Short: "List postings recorded for a period",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{"period": {period}}
			if org != "" {
				q.Set("organisation_id", org)
			}
			if branch != "" {
				q.Set("branch_id", branch)
			}

			var postings []dto.PostingResponse
			if _, err := newAPIClient(opts).do(cmd.Context(), http.MethodGet, "/api/v1/depreciation/postings?"+q.Encode(), nil, &postings); err != nil {
				return err
			}

			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), postings)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ASSET\tPERIOD\tAMOUNT\tJOURNAL ENTRY")
			for _, p := range postings {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.AssetID, p.Period, p.Amount, p.JournalEntryID)
			}
			return tw.Flush()
		},
	}
	postingsCmd.Flags().StringVar(&org, "org", "", "Organisation ID")
	postingsCmd.Flags().StringVar(&branch, "branch", "", "Branch ID")
	postingsCmd.Flags().StringVar(&period, "period", "", "Period as YYYY-MM")
	_ = postingsCmd.MarkFlagRequired("period")

	cmd.AddCommand(postCmd, postingsCmd)
	return cmd
}

func assetsCmd(opts *clientOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assets",
		Short: "Asset operations",
	}

	var org string
	recalcCmd := &cobra.Command{
		Use:   "recalculate",
		Short: "Recalculate the current value of every active asset",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.RecalculateResponse
			if _, err := newAPIClient(opts).do(cmd.Context(), http.MethodPost, "/api/v1/organisations/"+url.PathEscape(org)+"/recalculate", nil, &resp); err != nil {
				return err
			}

			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recalculated %d assets for %s\n", resp.Count, resp.OrganisationID)
			return nil
		},
	}
	recalcCmd.Flags().StringVar(&org, "org", "", "Organisation ID")
	_ = recalcCmd.MarkFlagRequired("org")

	var (
		req       dto.DisposeRequest
		salePrice int64
	)
	disposeCmd := &cobra.Command{
		Use:   "dispose ASSET_ID",
		Short: "Dispose of an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("sale-price-cents") {
				req.SalePriceCents = &salePrice
			}

			var resp dto.DisposalResultResponse
			if _, err := newAPIClient(opts).do(cmd.Context(), http.MethodPost, "/api/v1/assets/"+url.PathEscape(args[0])+"/disposals", &req, &resp); err != nil {
				return err
			}

			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			d := resp.Disposal
			fmt.Fprintf(cmd.OutOrStdout(), "Disposed %s (%s): book value %s, proceeds %s, gain/loss %s, journal entry %s\n",
				d.AssetID, d.Method, d.BookValue, d.SalePrice, d.GainLoss, d.JournalEntryID)
			return nil
		},
	}
	disposeCmd.Flags().StringVar(&req.Method, "method", "", "SOLD, DONATED, SCRAPPED, LOST, STOLEN, DAMAGED or TRADED")
	disposeCmd.Flags().Int64Var(&salePrice, "sale-price-cents", 0, "Sale price in minor units")
	disposeCmd.Flags().StringVar(&req.DisposalDate, "date", "", "Disposal date as YYYY-MM-DD (defaults to today)")
	disposeCmd.Flags().StringVar(&req.Notes, "notes", "", "Free-form notes")
	_ = disposeCmd.MarkFlagRequired("method")

	getCmd := &cobra.Command{
		Use:   "get ASSET_ID",
		Short: "Show an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var asset dto.AssetResponse
			if _, err := newAPIClient(opts).do(cmd.Context(), http.MethodGet, "/api/v1/assets/"+url.PathEscape(args[0]), nil, &asset); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), asset)
		},
	}

	cmd.AddCommand(recalcCmd, disposeCmd, getCmd)
	return cmd
}

func ledgerCmd(opts *clientOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	var org string
	consistencyCmd := &cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/ledger/consistency"
			if org != "" {
				path += "?organisation_id=" + url.QueryEscape(org)
			}

			var report dto.ConsistencyResponse
			if _, err := newAPIClient(opts).do(cmd.Context(), http.MethodGet, path, nil, &report, http.StatusConflict); err != nil {
				return err
			}

			if opts.jsonOutput {
				if err := printJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
			} else if report.Consistent {
				fmt.Fprintf(cmd.OutOrStdout(), "Consistency check PASSED\nDebits: %d Credits: %d\n", report.TotalDebitCents, report.TotalCreditCents)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Consistency check FAILED\nDebits: %d Credits: %d Difference: %d\n",
					report.TotalDebitCents, report.TotalCreditCents, report.DifferenceCents)
			}

			if !report.Consistent {
				return errInconsistent
			}
			return nil
		},
	}
	consistencyCmd.Flags().StringVar(&org, "org", "", "Organisation ID (empty checks the whole ledger)")

	cmd.AddCommand(consistencyCmd)
	return cmd
}

func printBatch(w io.Writer, r *dto.BatchResultResponse) {
	fmt.Fprintf(w, "Period %s: %d posted, %d skipped, %d failed, %d unprocessed\n",
		r.Period, len(r.Posted), len(r.Skipped), len(r.Failed), len(r.Unprocessed))

	if len(r.Skipped) == 0 && len(r.Failed) == 0 {
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ASSET\tOUTCOME\tDETAIL")
	for _, s := range r.Skipped {
		fmt.Fprintf(tw, "%s\tskipped\t%s\n", s.AssetID, truncate(s.Reason+" "+s.Detail, 60))
	}
	for _, f := range r.Failed {
		detail := f.Error
		if len(f.Codes) > 0 {
			detail = strings.Join(f.Codes, ",")
		}
		fmt.Fprintf(tw, "%s\tfailed\t%s\n", f.AssetID, truncate(detail, 60))
	}
	_ = tw.Flush()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
