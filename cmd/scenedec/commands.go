package main

import (
	"fmt"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"

	"github.com/Pallab007Saha/Own-co-slam/internal/backend/cpu"
	"github.com/Pallab007Saha/Own-co-slam/internal/checkpoint"
	"github.com/Pallab007Saha/Own-co-slam/internal/nn"
	"github.com/Pallab007Saha/Own-co-slam/internal/tensor"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "scenedec %s\n", version)
		},
	}
}

func newInspectCmd(a *app) *cobra.Command {
	var weights string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the decoder layout, and the contents of a weights file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.build(cpu.New())
			if err != nil {
				return err
			}
			defer m.net.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, m.net.Describe())
			fmt.Fprintf(out, "parameters: %d\n", m.net.NumParameters())

			if weights == "" {
				return nil
			}
			if err := printWeights(cmd, weights); err != nil {
				return err
			}
			return m.net.LoadWeights(weights)
		},
	}
	cmd.Flags().StringVar(&weights, "weights", "", "SafeTensors file to list and check against the decoder")
	return cmd
}

func printWeights(cmd *cobra.Command, path string) error {
	r, err := checkpoint.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "\nTENSOR\tDTYPE\tSHAPE\n")
	for _, name := range r.TensorNames() {
		info, err := r.TensorInfo(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\t%v\n", name, info.DType, info.Shape)
	}
	meta := r.Metadata()
	if len(meta) > 0 {
		fmt.Fprintf(tw, "\nMETADATA\tVALUE\n")
		for _, key := range slices.Sorted(maps.Keys(meta)) {
			fmt.Fprintf(tw, "%s\t%s\n", key, meta[key])
		}
	}
	return tw.Flush()
}

func newForwardCmd(a *app) *cobra.Command {
	var (
		batch    int
		dataSeed uint64
		noPos    bool
		weights  string
		freqs    int
		bins     int
	)

	cmd := &cobra.Command{
		Use:   "forward",
		Short: "Decode a batch of random embeddings and print rgb and sdf",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if batch < 1 {
				return fmt.Errorf("--batch must be >= 1, got %d", batch)
			}
			if freqs < 0 || bins < 0 {
				return fmt.Errorf("--encode-freqs and --encode-bins must be >= 0")
			}

			backend := cpu.New()
			m, err := a.build(backend)
			if err != nil {
				return err
			}
			defer m.net.Close()

			if weights != "" {
				if err := m.net.LoadWeights(weights); err != nil {
					return err
				}
			}

			rng := rand.New(rand.NewSource(dataSeed))
			inputCh, inputChPos := a.v.GetInt("input-ch"), a.v.GetInt("input-ch-pos")
			embed, err := uniformBatch(rng, batch, inputCh, backend)
			if err != nil {
				return err
			}
			embedColor, err := uniformBatch(rng, batch, inputCh, backend)
			if err != nil {
				return err
			}
			var embedPos *cpuTensor
			switch {
			case noPos:
			case freqs > 0:
				enc := nn.NewFrequencyEncoding[*cpu.CPUBackend](freqs, false)
				embedPos, err = encodedBatch(rng, batch, enc, inputChPos, backend)
			case bins > 0:
				embedPos, err = encodedBatch(rng, batch, nn.NewOneBlobEncoding[*cpu.CPUBackend](bins), inputChPos, backend)
			default:
				embedPos, err = uniformBatch(rng, batch, inputChPos, backend)
			}
			if err != nil {
				return err
			}

			raw, err := m.forward(embed, embedPos, embedColor)
			if err != nil {
				return err
			}
			a.logger.Info("decoded batch", zap.Int("batch", batch), zap.Any("shape", raw.Shape()))

			out := cmd.OutOrStdout()
			for i := 0; i < batch; i++ {
				fmt.Fprintf(out, "%d\trgb=[%.6f %.6f %.6f]\tsdf=%.6f\n",
					i, raw.At(i, 0), raw.At(i, 1), raw.At(i, 2), raw.At(i, 3))
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&batch, "batch", 4, "number of samples")
	flags.Uint64Var(&dataSeed, "data-seed", 1, "seed for the random embeddings")
	flags.BoolVar(&noPos, "no-pos", false, "omit the positional embedding")
	flags.StringVar(&weights, "weights", "", "SafeTensors file to load before decoding")
	flags.IntVar(&freqs, "encode-freqs", 0, "build the positional embedding by frequency-encoding random 3-D points with this many octaves")
	flags.IntVar(&bins, "encode-bins", 0, "build the positional embedding by one-blob encoding random 3-D points with this many bins")
	cmd.MarkFlagsMutuallyExclusive("no-pos", "encode-freqs", "encode-bins")
	return cmd
}

// positionEncoder maps [batch, 3] points to a positional embedding.
type positionEncoder interface {
	fmt.Stringer
	OutputDims(inputDims int) int
	Forward(points *cpuTensor) (*cpuTensor, error)
}

// encodedBatch draws batch points in the unit cube and encodes them with
// enc. The encoded width must equal width.
func encodedBatch(rng *rand.Rand, batch int, enc positionEncoder, width int, backend *cpu.CPUBackend) (*cpuTensor, error) {
	if got := enc.OutputDims(3); got != width {
		return nil, fmt.Errorf("%v yields %d positional channels, --input-ch-pos is %d", enc, got, width)
	}
	data := make([]float32, batch*3)
	for i := range data {
		data[i] = float32(rng.Float64())
	}
	points, err := tensor.FromSlice(data, tensor.Shape{batch, 3}, backend)
	if err != nil {
		return nil, err
	}
	return enc.Forward(points)
}

// uniformBatch draws a [batch, width] tensor from U(-1, 1).
func uniformBatch(rng *rand.Rand, batch, width int, backend *cpu.CPUBackend) (*cpuTensor, error) {
	data := make([]float32, batch*width)
	for i := range data {
		data[i] = float32(rng.Float64()*2 - 1)
	}
	return tensor.FromSlice(data, tensor.Shape{batch, width}, backend)
}

func newExportCmd(a *app) *cobra.Command {
	var meta map[string]string

	cmd := &cobra.Command{
		Use:   "export <path>",
		Short: "Write freshly initialized decoder weights to a SafeTensors file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.build(cpu.New())
			if err != nil {
				return err
			}
			defer m.net.Close()

			if err := m.net.SaveWeights(args[0], meta); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d tensors to %s\n", len(m.net.StateDict()), args[0])
			return nil
		},
	}
	cmd.Flags().StringToStringVar(&meta, "meta", nil, "extra metadata entries (key=value)")
	return cmd
}
