package domain

// Document é o payload enviado para a API de criação de documentos.
//
// Os nomes das tags são o contrato externo (wire names) e não podem ser renomeados.
// As mesmas chaves valem para arquivos YAML de documentos.
type Document struct {
	Description    string    `json:"description" yaml:"description"`
	DocID          string    `json:"doc_id" yaml:"doc_id"`
	DocStatus      string    `json:"doc_status" yaml:"doc_status"`
	DocType        string    `json:"doc_type" yaml:"doc_type"`
	ImportRequest  bool      `json:"importRequest" yaml:"importRequest"`
	OwnerINN       string    `json:"owner_inn" yaml:"owner_inn"`
	ParticipantINN string    `json:"participant_inn" yaml:"participant_inn"`
	ProducerINN    string    `json:"producer_inn" yaml:"producer_inn"`
	ProductionDate string    `json:"production_date" yaml:"production_date"`
	ProductionType string    `json:"production_type" yaml:"production_type"`
	Products       []Product `json:"products" yaml:"products"`
	RegDate        string    `json:"reg_date" yaml:"reg_date"`
	RegNumber      string    `json:"reg_number" yaml:"reg_number"`
}

type Product struct {
	CertificateDocument       string `json:"certificate_document" yaml:"certificate_document"`
	CertificateDocumentDate   string `json:"certificate_document_date" yaml:"certificate_document_date"`
	CertificateDocumentNumber string `json:"certificate_document_number" yaml:"certificate_document_number"`
	OwnerINN                  string `json:"owner_inn" yaml:"owner_inn"`
	ProducerINN               string `json:"producer_inn" yaml:"producer_inn"`
	ProductionDate            string `json:"production_date" yaml:"production_date"`
	TnvedCode                 string `json:"tnved_code" yaml:"tnved_code"`
	UitCode                   string `json:"uit_code" yaml:"uit_code"`
	UituCode                  string `json:"uitu_code" yaml:"uitu_code"`
}
