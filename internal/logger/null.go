package logger

type nullWriter struct{}

func (w *nullWriter) Write(b []byte) (int, error) {
	return len(b), nil
}
