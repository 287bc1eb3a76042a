package consoles

type Console interface {
	Printf(format string, a ...any)

	PushPrefix(format string, a ...any)
	PopPrefix()

	// Prepare renders a line the way Printf would, without writing it.
	Prepare(format string, a ...any) string
}
