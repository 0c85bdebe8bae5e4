package main

import (
	"errors"
	"fmt"
	"os"

	"crpt-gateway/client/submission/domain"

	"gopkg.in/yaml.v3"
)

// loadDocuments lê um documento ou uma lista de documentos de um arquivo YAML.
// JSON também serve, já que é YAML válido. Sem arquivo, usa o documento de exemplo.
func loadDocuments(path string) ([]*domain.Document, error) {
	if path == "" {
		return []*domain.Document{sampleDocument()}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read documents file: %w", err)
	}

	var list []*domain.Document
	if err := yaml.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return nil, errors.New("documents file has no documents")
		}
		for i, d := range list {
			if d == nil {
				return nil, fmt.Errorf("document %d is empty", i)
			}
		}
		return list, nil
	}

	var single domain.Document
	if err := yaml.Unmarshal(raw, &single); err != nil {
		return nil, fmt.Errorf("parse documents file: %w", err)
	}
	return []*domain.Document{&single}, nil
}

func sampleDocument() *domain.Document {
	return &domain.Document{
		Description:    "Description",
		DocID:          "DocID",
		DocStatus:      "DocStatus",
		DocType:        "LP_INTRODUCE_GOODS",
		ImportRequest:  true,
		OwnerINN:       "OwnerINN",
		ParticipantINN: "ParticipantINN",
		ProducerINN:    "ProducerINN",
		ProductionDate: "2020-01-23",
		ProductionType: "ProductionType",
		Products: []domain.Product{{
			CertificateDocument:       "CertDoc",
			CertificateDocumentDate:   "2020-01-23",
			CertificateDocumentNumber: "CertDocNum",
			OwnerINN:                  "OwnerINN",
			ProducerINN:               "ProducerINN",
			ProductionDate:            "2020-01-23",
			TnvedCode:                 "TNVEDCode",
			UitCode:                   "UITCode",
			UituCode:                  "UITUCode",
		}},
		RegDate:   "2020-01-23",
		RegNumber: "RegNumber",
	}
}

// expand repete cada documento `copies` vezes, intercalando as rodadas.
func expand(docs []*domain.Document, copies int) []*domain.Document {
	out := make([]*domain.Document, 0, len(docs)*copies)
	for i := 0; i < copies; i++ {
		out = append(out, docs...)
	}
	return out
}
