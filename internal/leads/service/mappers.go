package service

import (
	"imovel_portal_backend/internal/leads/repository"
	"imovel_portal_backend/internal/leads/transport"
)

func toLeadResponse(lead repository.Lead) transport.LeadResponse {
	resp := transport.LeadResponse{
		ID:       lead.ID,
		Nome:     lead.Nome,
		Telefone: lead.Telefone,
		Email:    lead.Email,
		Mensagem: lead.Mensagem,
		Origem:   lead.Origem,
		Status:   lead.Status,
		CriadoEm: lead.CreatedAt,
	}

	if lead.CorretorID != nil && lead.CorretorNome != nil {
		summary := &transport.CorretorSummary{
			ID:   *lead.CorretorID,
			Nome: *lead.CorretorNome,
		}
		if lead.CorretorWhatsapp != nil {
			summary.Whatsapp = *lead.CorretorWhatsapp
		}
		resp.Corretor = summary
	}

	if lead.ImovelID != nil && lead.ImovelTitulo != nil {
		summary := &transport.ImovelSummary{
			ID:     *lead.ImovelID,
			Titulo: *lead.ImovelTitulo,
		}
		if lead.ImovelTipo != nil {
			summary.Tipo = *lead.ImovelTipo
		}
		if lead.ImovelPreco != nil {
			summary.Preco = *lead.ImovelPreco
		}
		if lead.ImovelBairro != nil {
			summary.Bairro = *lead.ImovelBairro
		}
		resp.Imovel = summary
	}

	return resp
}

func toStatsResponse(counts repository.StatusCounts) transport.StatsResponse {
	total := counts.Total()

	rate := 0.0
	if total > 0 {
		rate = float64(counts.Converted) / float64(total) * 100
	}

	return transport.StatsResponse{
		Total:         total,
		Pendentes:     counts.Pending,
		Assumidos:     counts.Assigned,
		Convertidos:   counts.Converted,
		Expirados:     counts.Expired,
		TaxaConversao: rate,
	}
}
