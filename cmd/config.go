package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/churnlens-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set ChurnLens configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		for _, k := range cfgpkg.Keys {
			fmt.Printf("%s: %s\n", k, configValue(cfg, k))
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := requireConfig()
		if err != nil {
			return err
		}
		next := *c
		atoi := func() (int, error) {
			i, err := strconv.Atoi(val)
			if err != nil {
				return 0, fmt.Errorf("invalid int for %s: %v", key, val)
			}
			return i, nil
		}
		switch key {
		case "session_dir":
			next.SessionDir = val
		case "page_size":
			if next.PageSize, err = atoi(); err != nil {
				return err
			}
		case "histogram_bins":
			if next.HistogramBins, err = atoi(); err != nil {
				return err
			}
		case "range_bins":
			if next.RangeBins, err = atoi(); err != nil {
				return err
			}
		case "top_k":
			if next.TopK, err = atoi(); err != nil {
				return err
			}
		case "crosstab_top_k":
			if next.CrossTabTopK, err = atoi(); err != nil {
				return err
			}
		case "output_format":
			next.OutputFormat = strings.ToLower(val)
		case "listen_addr":
			next.ListenAddr = val
		case "cors_origins":
			next.CORSOrigins = nil
			for _, o := range strings.Split(val, ",") {
				if o = strings.TrimSpace(o); o != "" {
					next.CORSOrigins = append(next.CORSOrigins, o)
				}
			}
		default:
			return fmt.Errorf("unknown key: %s (known: %s)", key, strings.Join(cfgpkg.Keys, ", "))
		}
		if err := cfgpkg.Save(&next, cfgFile); err != nil {
			return err
		}
		cfg = &next
		fmt.Println("Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func configValue(c *cfgpkg.Global, key string) string {
	switch key {
	case "session_dir":
		return c.SessionDir
	case "page_size":
		return strconv.Itoa(c.PageSize)
	case "histogram_bins":
		return strconv.Itoa(c.HistogramBins)
	case "range_bins":
		return strconv.Itoa(c.RangeBins)
	case "top_k":
		return strconv.Itoa(c.TopK)
	case "crosstab_top_k":
		return strconv.Itoa(c.CrossTabTopK)
	case "output_format":
		return c.OutputFormat
	case "listen_addr":
		return c.ListenAddr
	case "cors_origins":
		return strings.Join(c.CORSOrigins, ",")
	}
	return ""
}
