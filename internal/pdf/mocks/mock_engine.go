package mocks

import (
	"io"

	"github.com/Gedamu-tinsae/remove-password/internal/pdf"

	"github.com/stretchr/testify/mock"
)

type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) Open(data []byte, password string) (*pdf.Document, error) {
	args := m.Called(data, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pdf.Document), args.Error(1)
}

func (m *MockEngine) Rebuild(doc *pdf.Document) (*pdf.Document, error) {
	args := m.Called(doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pdf.Document), args.Error(1)
}

func (m *MockEngine) Write(w io.Writer, doc *pdf.Document) error {
	args := m.Called(w, doc)
	if f, ok := args.Get(0).(func(io.Writer, *pdf.Document) error); ok {
		return f(w, doc)
	}
	return args.Error(0)
}

func (m *MockEngine) PageSizes(doc *pdf.Document) ([]pdf.Size, error) {
	args := m.Called(doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pdf.Size), args.Error(1)
}
