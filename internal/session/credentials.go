package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// FileStore хранит bearer токен между запусками (аналог localStorage браузера).
// Файл принадлежит только текущему пользователю ОС.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

type storedCredentials struct {
	Token string `json:"token"`
}

// Load читает сохраненный токен. Отсутствие файла не является ошибкой - возвращается
// пустая строка. Протухший по exp токен отбрасывается сразу, чтобы не делать заведомо
// обреченный запрос к бэкенду.
func (s *FileStore) Load() (string, error) {
	raw, readErr := os.ReadFile(s.path)
	if readErr != nil {
		if os.IsNotExist(readErr) {
			return "", nil
		}
		return "", errors.Wrap(readErr, "load credentials")
	}

	var creds storedCredentials
	if jsonErr := json.Unmarshal(raw, &creds); jsonErr != nil {
		return "", errors.Wrap(jsonErr, "parse credentials")
	}

	if tokenExpired(creds.Token, time.Now()) {
		return "", nil
	}
	return creds.Token, nil
}

// Save сохраняет токен на диск, создавая директорию при необходимости.
func (s *FileStore) Save(token string) error {
	if mkErr := os.MkdirAll(filepath.Dir(s.path), 0o700); mkErr != nil {
		return errors.Wrap(mkErr, "save credentials")
	}

	raw, marshalErr := json.Marshal(storedCredentials{Token: token})
	if marshalErr != nil {
		return errors.Wrap(marshalErr, "save credentials")
	}

	if writeErr := os.WriteFile(s.path, raw, 0o600); writeErr != nil {
		return errors.Wrap(writeErr, "save credentials")
	}
	return nil
}

// Clear удаляет сохраненные credentials. Отсутствие файла не считается ошибкой.
func (s *FileStore) Clear() error {
	if rmErr := os.Remove(s.path); rmErr != nil && !os.IsNotExist(rmErr) {
		return errors.Wrap(rmErr, "clear credentials")
	}
	return nil
}

// tokenExpired проверяет exp claim без верификации подписи: ключ подписи знает только
// бэкенд, клиенту важно лишь не отправлять просроченный токен. Неразборчивый токен
// тоже считается негодным.
func tokenExpired(token string, now time.Time) bool {
	if token == "" {
		return true
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}

	exp, expErr := claims.GetExpirationTime()
	if expErr != nil || exp == nil {
		// токен без exp считаем бессрочным, решение о годности за бэкендом.
		return false
	}
	return now.After(exp.Time)
}
