package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/hwforge/xactgen/pkg/generator"
	"github.com/hwforge/xactgen/pkg/ipxact"
	"github.com/hwforge/xactgen/pkg/vhdl"
)

var (
	genInput       string
	genAddrMap     string
	genFieldMap    string
	genPackageName string
	genOutput      string
	genBusWidth    int
	genBlockBits   int
	genManifest    string
)

var (
	colorSuccess = color.New(color.FgGreen)
	colorError   = color.New(color.FgRed, color.Bold)
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a VHDL constants package from a register map document",
	Long: `Generates a VHDL package of named constants from an IP-XACT style register
map document.

The document's memory maps drive two independent traversal modes: the map named
by --addr-map contributes block select and register address constants, the map
named by --field-map contributes field bit position, enumerated value and reset
value constants. Either may be omitted; both may name the same map.

Instead of flags, a YAML manifest can describe several generation jobs at once:

  jobs:
    - input: can_fd_core.xml
      addrMap: CAN_Registers
      fieldMap: CAN_Registers
      package: can_registers_pkg
      output: can_registers_pkg.vhd

Examples:
  # Addresses and bit fields from the same map, to stdout
  xactgen generate -i core.xml --addr-map Regs --field-map Regs -p regs_pkg

  # Run every job of a manifest
  xactgen generate -m manifest.yaml`,
	Run: runGenerate,
}

func init() {
	RootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&genInput, "input", "i", "", "register map XML document")
	generateCmd.Flags().StringVar(&genAddrMap, "addr-map", "", "name of the memory map carrying register addresses")
	generateCmd.Flags().StringVar(&genFieldMap, "field-map", "", "name of the memory map carrying bit fields")
	generateCmd.Flags().StringVarP(&genPackageName, "package-name", "p", "", "name of the generated VHDL package")
	generateCmd.Flags().StringVarP(&genOutput, "output", "o", "", "output file. If omitted, the output will be written to stdout")
	generateCmd.Flags().IntVar(&genBusWidth, "bus-width", 32, "width in bits of the addressing bus")
	generateCmd.Flags().IntVar(&genBlockBits, "block-select-bits", 4, "bit width of the generated block select constants")
	generateCmd.Flags().StringVarP(&genManifest, "manifest", "m", "", "YAML manifest with a list of generation jobs")

	viper.BindPFlag("busWidth", generateCmd.Flags().Lookup("bus-width"))
	viper.BindPFlag("blockSelectBits", generateCmd.Flags().Lookup("block-select-bits"))
}

// generateJob is one unit of work: one register map document in, one VHDL
// package out
type generateJob struct {
	Input           string `yaml:"input"`
	AddrMap         string `yaml:"addrMap"`
	FieldMap        string `yaml:"fieldMap"`
	Package         string `yaml:"package"`
	Output          string `yaml:"output"`
	BusWidth        int    `yaml:"busWidth"`
	BlockSelectBits int    `yaml:"blockSelectBits"`
}

type manifest struct {
	Jobs []generateJob `yaml:"jobs"`
}

func runGenerate(cmd *cobra.Command, args []string) {
	jobs, err := collectJobs()
	if err != nil {
		colorError.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for _, job := range jobs {
		if err := runJob(job); err != nil {
			colorError.Fprintf(os.Stderr, "Error generating from %v: %v\n", job.Input, err)
			os.Exit(2)
		}
	}
}

func collectJobs() ([]generateJob, error) {
	defaults := generateJob{
		BusWidth:        viper.GetInt("busWidth"),
		BlockSelectBits: viper.GetInt("blockSelectBits"),
	}

	if genManifest != "" {
		data, err := os.ReadFile(genManifest)
		if err != nil {
			return nil, err
		}
		return decodeManifest(data, defaults)
	}

	if genInput == "" {
		return nil, errors.New("either --input or --manifest is required")
	}
	if genPackageName == "" {
		return nil, errors.New("--package-name is required")
	}

	return []generateJob{{
		Input:           genInput,
		AddrMap:         genAddrMap,
		FieldMap:        genFieldMap,
		Package:         genPackageName,
		Output:          genOutput,
		BusWidth:        defaults.BusWidth,
		BlockSelectBits: defaults.BlockSelectBits,
	}}, nil
}

// decodeManifest parses a YAML job list, filling unset bus width and block
// select bits from the given defaults
func decodeManifest(data []byte, defaults generateJob) ([]generateJob, error) {
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	if len(m.Jobs) == 0 {
		return nil, errors.New("manifest has no jobs")
	}

	for i := range m.Jobs {
		job := &m.Jobs[i]
		if job.Input == "" {
			return nil, fmt.Errorf("manifest job %v: input is required", i)
		}
		if job.Package == "" {
			return nil, fmt.Errorf("manifest job %v: package is required", i)
		}
		if job.BusWidth == 0 {
			job.BusWidth = defaults.BusWidth
		}
		if job.BlockSelectBits == 0 {
			job.BlockSelectBits = defaults.BlockSelectBits
		}
	}

	return m.Jobs, nil
}

func runJob(job generateJob) error {
	component, err := ipxact.LoadFile(job.Input)
	if err != nil {
		return err
	}

	var addrMap, fieldMap *ipxact.MemoryMap
	if job.AddrMap != "" {
		if addrMap, err = component.MemoryMap(job.AddrMap); err != nil {
			return err
		}
	}
	if job.FieldMap != "" {
		if fieldMap, err = component.MemoryMap(job.FieldMap); err != nil {
			return err
		}
	}

	g, err := generator.New(addrMap, fieldMap, generator.Config{
		BusWidth:        job.BusWidth,
		BlockSelectBits: job.BlockSelectBits,
	})
	if err != nil {
		return err
	}

	if fieldMap != nil {
		slog.Info("writing bit fields of register map", "map", fieldMap.Name, "package", job.Package)
	}
	if addrMap != nil {
		slog.Info("writing addresses of register map", "map", addrMap.Name, "package", job.Package)
	}

	w := vhdl.NewWriter()
	if err := generator.Render(g.PackageOps(job.Package), w); err != nil {
		return err
	}

	if job.Output == "" {
		_, err := w.WriteTo(os.Stdout)
		return err
	}

	if err := writeAtomic(job.Output, w); err != nil {
		return err
	}
	colorSuccess.Fprintf(os.Stderr, "Generated %v\n", job.Output)
	return nil
}

// writeAtomic writes the rendered package to a temporary file next to the
// target and renames it into place on success, so an aborted run never
// leaves a partial output behind
func writeAtomic(path string, w *vhdl.Writer) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}

	if _, err := w.WriteTo(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}
