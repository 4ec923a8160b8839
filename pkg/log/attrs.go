package log

import "log/slog"

func Collection[T ~string](name T) slog.Attr {
	return slog.String("collection", string(name))
}

func StepName[T ~string](name T) slog.Attr {
	return slog.String("step", string(name))
}

func StepType[T ~string](kind T) slog.Attr {
	return slog.String("step_type", string(kind))
}

func BundleKey(key string) slog.Attr {
	return slog.String("bundle_key", key)
}

func Error(err error) slog.Attr {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return slog.String("error", msg)
}
