package shell

import "context"

// CheckOutput runs command inside a scoped, validated shell and returns
// only the captured stdout text. A non-zero exit code surfaces as an
// *ExitError. The options are the same as for New.
func CheckOutput(ctx context.Context, command string, opts ...Option) (string, error) {
	sh := New(command, opts...).Validate()

	var out string
	err := sh.With(ctx, func(s *Shell) error {
		res, err := s.Result(ctx)
		if err != nil {
			return err
		}
		out = res.Stdout
		return nil
	})
	return out, err
}
