package utils

import (
	"io"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
)

// MaxRecordSize ограничивает тело запроса; самые длинные партии с комментариями
// занимают сотни килобайт.
const MaxRecordSize = 8 << 20

func ReadRequestBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxRecordSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read request body")
	}
	if len(body) > MaxRecordSize {
		return nil, errors.Errorf("request body exceeds %d bytes", MaxRecordSize)
	}
	return body, nil
}

// QueryInt читает целый параметр запроса; пустое значение даёт def.
func QueryInt(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(err, "query parameter %s", name)
	}
	return n, nil
}
