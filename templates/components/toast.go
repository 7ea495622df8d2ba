package components

// Toast kinds
const (
	ToastSuccess = "success"
	ToastWarning = "warning"
	ToastError   = "error"
)

var toastClasses = map[string]string{
	ToastSuccess: "bg-green-500/10 border-green-500/20 text-green-400",
	ToastWarning: "bg-yellow-500/10 border-yellow-500/20 text-yellow-400",
	ToastError:   "bg-red-500/10 border-red-500/20 text-red-400",
}

func toastKind(kind string) string {
	if _, ok := toastClasses[kind]; ok {
		return kind
	}
	return ToastError
}

func toastClass(kind string) string {
	return toastClasses[toastKind(kind)]
}
