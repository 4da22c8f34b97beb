package settlement

import "errors"

// ErrNoSession возвращается при запуске поллера без correlation identifier.
// Поллер не имеет права работать вслепую: вызывающий обязан вернуть пользователя в каталог.
var ErrNoSession = errors.New("no checkout session id in navigation context")
