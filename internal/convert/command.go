package convert

import "slices"

// FileArgs returns the arguments converting one input to output.
func FileArgs(input, output string, format Format, normalize bool) []string {
	args := []string{"-y", "-i", input}
	if normalize {
		args = append(args, "-af", "dynaudnorm")
	}
	args = append(args, format.EncoderArgs...)
	return append(args, output)
}

// MixArgs returns the arguments mixing all inputs into output.
func MixArgs(inputs []string, output string, format Format, normalize bool) []string {
	args := make([]string, 0, 2*len(inputs)+len(format.EncoderArgs)+8)
	args = append(args, "-y")
	for _, in := range inputs {
		args = append(args, "-i", in)
	}
	args = append(args, "-filter_complex", MixGraph(len(inputs), normalize), "-map", "[aud]")
	args = append(args, slices.Clone(format.EncoderArgs)...)
	return append(args, output)
}
